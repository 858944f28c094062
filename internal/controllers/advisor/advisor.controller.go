package advisorController

import (
	"context"
	"errors"

	"advisorapi/internal/events"
	"advisorapi/internal/logger"
	"advisorapi/internal/metrics"
	. "advisorapi/internal/models"
	"advisorapi/internal/repositories"
	"advisorapi/internal/services"
)

var (
	ErrNotFound         = errors.New("advisor not found")
	ErrMalformedRequest = errors.New("path id does not match record id")
	ErrConflict         = repositories.ErrConflict
)

type AdvisorController struct {
	advisorRepo              repositories.AdvisorRepository
	healthStatusService      *services.HealthStatusService
	transactionService       *services.TransactionService
	cacheInvalidationService *services.CacheInvalidationService
	metrics                  *metrics.Metrics
	log                      logger.Logger
}

func New(
	advisorRepo repositories.AdvisorRepository,
	healthStatusService *services.HealthStatusService,
	transactionService *services.TransactionService,
	cacheInvalidationService *services.CacheInvalidationService,
	metrics *metrics.Metrics,
) *AdvisorController {
	return &AdvisorController{
		advisorRepo:              advisorRepo,
		healthStatusService:      healthStatusService,
		transactionService:       transactionService,
		cacheInvalidationService: cacheInvalidationService,
		metrics:                  metrics,
		log:                      logger.New("AdvisorController"),
	}
}

// Create validates candidate, assigns it a health status and stores it. Any
// health status the caller sent is replaced.
func (ac *AdvisorController) Create(ctx context.Context, candidate Advisor) (AdvisorView, error) {
	log := ac.log.Function("Create")

	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := Validate(txCtx, ac.advisorRepo, candidate); err != nil {
			return err
		}

		candidate.HealthStatus = ac.healthStatusService.Assign()

		if err := ac.advisorRepo.Insert(txCtx, &candidate); err != nil {
			return log.Err("failed to insert advisor", err, "advisorID", candidate.ID)
		}

		return nil
	})
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			log.Info("Advisor rejected", "advisorID", candidate.ID, "reason", validationErr.Reason)
			ac.metrics.IncrementValidationFailure(validationErr.Reason)
		}
		return AdvisorView{}, err
	}

	ac.metrics.IncrementAdvisorCreated()
	ac.metrics.IncrementHealthStatus(string(candidate.HealthStatus))
	ac.notify(ctx, events.AdvisorCreated, candidate.ID)

	return NewAdvisorView(candidate), nil
}

func (ac *AdvisorController) GetOne(ctx context.Context, id int) (AdvisorView, error) {
	advisor, err := ac.advisorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return AdvisorView{}, ErrNotFound
		}
		return AdvisorView{}, ac.log.Function("GetOne").
			Err("failed to get advisor", err, "advisorID", id)
	}

	return NewAdvisorView(*advisor), nil
}

func (ac *AdvisorController) GetAll(ctx context.Context) ([]AdvisorView, error) {
	advisors, err := ac.advisorRepo.ListAll(ctx)
	if err != nil {
		return nil, ac.log.Function("GetAll").Err("failed to list advisors", err)
	}

	return NewAdvisorViews(advisors), nil
}

// Update overwrites the advisor at id with record. No field rules are applied
// here, unlike Create.
func (ac *AdvisorController) Update(ctx context.Context, id int, record Advisor) error {
	log := ac.log.Function("Update")

	if record.ID != id {
		log.Info("Rejected update with mismatched id", "pathID", id, "recordID", record.ID)
		return ErrMalformedRequest
	}

	if err := ac.advisorRepo.Replace(ctx, id, &record); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return log.Err("failed to update advisor", err, "advisorID", id)
	}

	ac.notify(ctx, events.AdvisorUpdated, id)
	return nil
}

func (ac *AdvisorController) Delete(ctx context.Context, id int) error {
	log := ac.log.Function("Delete")

	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if _, err := ac.advisorRepo.FindByID(txCtx, id); err != nil {
			return err
		}
		return ac.advisorRepo.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return log.Err("failed to delete advisor", err, "advisorID", id)
	}

	ac.notify(ctx, events.AdvisorDeleted, id)
	return nil
}

func (ac *AdvisorController) notify(ctx context.Context, eventType string, advisorID int) {
	if ac.cacheInvalidationService == nil {
		return
	}

	if _, err := ac.cacheInvalidationService.InvalidateAdvisorCache(ctx, eventType, advisorID); err != nil {
		ac.log.Function("notify").Warn(
			"Failed to invalidate advisor cache",
			"type",
			eventType,
			"advisorID",
			advisorID,
			"error",
			err,
		)
	}
}
