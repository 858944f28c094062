package repositories

import (
	"context"
	"errors"
	"strings"

	"advisorapi/internal/database"
	"advisorapi/internal/logger"
	. "advisorapi/internal/models"
	"advisorapi/internal/services"

	"gorm.io/gorm"
)

//go:generate mockgen -source=advisor.repository.go -destination=mocks/advisor.repository.mock.go -package=mocks AdvisorRepository

const ADVISOR_CACHE_PATTERN = "advisor:%s"

var (
	ErrNotFound     = errors.New("advisor not found")
	ErrConflict     = errors.New("advisor conflicts with an existing record")
	ErrUnknownField = errors.New("unknown advisor field")
)

// Fields ExistsByField may be asked about. Anything else is rejected rather
// than interpolated into SQL.
const (
	FieldID  = "id"
	FieldSIN = "sin"
)

// AdvisorRepository is the record store behind the advisor service.
type AdvisorRepository interface {
	FindByID(ctx context.Context, id int) (*Advisor, error)
	ListAll(ctx context.Context) ([]*Advisor, error)
	Insert(ctx context.Context, advisor *Advisor) error
	Replace(ctx context.Context, id int, advisor *Advisor) error
	Delete(ctx context.Context, id int) error
	ExistsByField(ctx context.Context, field string, value any) (bool, error)
}

type advisorRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAdvisor(db database.DB) AdvisorRepository {
	return &advisorRepository{
		db:  db,
		log: logger.New("advisorRepository"),
	}
}

func (r *advisorRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *advisorRepository) FindByID(ctx context.Context, id int) (*Advisor, error) {
	log := r.log.Function("FindByID")

	var advisor Advisor
	if found := r.getCacheByID(ctx, id, &advisor); found {
		return &advisor, nil
	}

	if err := r.getDB(ctx).First(&advisor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get advisor by id", err, "id", id)
	}

	if err := r.addAdvisorToCache(ctx, &advisor); err != nil {
		log.Warn("failed to add advisor to cache", "advisorID", id, "error", err)
	}

	return &advisor, nil
}

func (r *advisorRepository) ListAll(ctx context.Context) ([]*Advisor, error) {
	log := r.log.Function("ListAll")

	advisors := []*Advisor{}
	if err := r.getDB(ctx).Order("id ASC").Find(&advisors).Error; err != nil {
		return nil, log.Err("failed to list advisors", err)
	}

	return advisors, nil
}

func (r *advisorRepository) Insert(ctx context.Context, advisor *Advisor) error {
	log := r.log.Function("Insert")

	if err := r.getDB(ctx).Create(advisor).Error; err != nil {
		if isDuplicateKey(err) {
			return log.Err("failed to insert advisor", ErrConflict, "id", advisor.ID, "cause", err)
		}
		return log.Err("failed to insert advisor", err, "id", advisor.ID)
	}

	return nil
}

// Replace overwrites every caller-controlled column of the advisor at id. The
// stored health status is kept unless the replacement carries a valid one.
func (r *advisorRepository) Replace(ctx context.Context, id int, advisor *Advisor) error {
	log := r.log.Function("Replace")

	values := map[string]any{
		"name":    advisor.Name,
		"sin":     advisor.SIN,
		"address": advisor.Address,
		"phone":   advisor.Phone,
	}
	if advisor.HealthStatus.IsValid() {
		values["health_status"] = advisor.HealthStatus
	}

	result := r.getDB(ctx).
		Model(&Advisor{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return log.Err("failed to replace advisor", ErrConflict, "id", id, "cause", result.Error)
		}
		return log.Err("failed to replace advisor", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.removeAdvisorFromCache(ctx, id)

	return nil
}

func (r *advisorRepository) Delete(ctx context.Context, id int) error {
	log := r.log.Function("Delete")

	result := r.getDB(ctx).Delete(&Advisor{}, "id = ?", id)
	if result.Error != nil {
		return log.Err("failed to delete advisor", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	r.removeAdvisorFromCache(ctx, id)

	return nil
}

func (r *advisorRepository) ExistsByField(ctx context.Context, field string, value any) (bool, error) {
	log := r.log.Function("ExistsByField")

	if field != FieldID && field != FieldSIN {
		return false, log.Err("refusing lookup", ErrUnknownField, "field", field)
	}

	var count int64
	if err := r.getDB(ctx).
		Model(&Advisor{}).
		Where(field+" = ?", value).
		Count(&count).Error; err != nil {
		return false, log.Err("failed to check advisor existence", err, "field", field)
	}

	return count > 0, nil
}

// useCache reports whether reads may go through the cache. Inside a
// transaction the row may hold uncommitted changes, so the cache is bypassed.
func (r *advisorRepository) useCache(ctx context.Context) bool {
	if r.db.Cache.General == nil {
		return false
	}
	_, inTx := services.GetTransaction(ctx)
	return !inTx
}

func (r *advisorRepository) getCacheByID(ctx context.Context, id int, advisor *Advisor) bool {
	if !r.useCache(ctx) {
		return false
	}

	found, err := database.NewCacheBuilder(r.db.Cache.General, id).
		WithHashPattern(ADVISOR_CACHE_PATTERN).
		WithContext(ctx).
		Get(advisor)
	if err != nil {
		r.log.Function("getCacheByID").
			Warn("failed to get advisor from cache", "advisorID", id, "error", err)
		return false
	}

	return found
}

func (r *advisorRepository) addAdvisorToCache(ctx context.Context, advisor *Advisor) error {
	if !r.useCache(ctx) {
		return nil
	}

	return database.NewCacheBuilder(r.db.Cache.General, advisor.ID).
		WithHashPattern(ADVISOR_CACHE_PATTERN).
		WithStruct(advisor).
		WithTTL(r.db.CacheTTL).
		WithContext(ctx).
		Set()
}

func (r *advisorRepository) removeAdvisorFromCache(ctx context.Context, id int) {
	if r.db.Cache.General == nil {
		return
	}

	if err := database.NewCacheBuilder(r.db.Cache.General, id).
		WithHashPattern(ADVISOR_CACHE_PATTERN).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Function("removeAdvisorFromCache").
			Warn("failed to remove advisor from cache", "advisorID", id, "error", err)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "duplicate key")
}
