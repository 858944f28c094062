package services

import (
	"context"
	"time"

	"advisorapi/internal/events"
	"advisorapi/internal/logger"

	"github.com/google/uuid"
)

// CacheInvalidationService tells subscribers (websocket clients, other
// instances listening on valkey) that their copy of an advisor is stale.
type CacheInvalidationService struct {
	eventBus *events.EventBus
	log      logger.Logger
}

func NewCacheInvalidationService(
	eventBus *events.EventBus,
) *CacheInvalidationService {
	return &CacheInvalidationService{
		eventBus: eventBus,
		log:      logger.New("CacheInvalidationService"),
	}
}

func (s *CacheInvalidationService) InvalidateAdvisorCache(
	ctx context.Context,
	eventType string,
	advisorID int,
) (events.Event, error) {
	log := s.log.Function("InvalidateAdvisorCache")

	event := events.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		AdvisorID: advisorID,
		Timestamp: time.Now().UTC(),
	}

	if s.eventBus == nil {
		return event, nil
	}

	if err := s.eventBus.PublishContext(ctx, events.ADVISOR_CHANNEL, event); err != nil {
		return event, log.Err("failed to publish advisor event", err, "type", eventType, "advisorID", advisorID)
	}

	log.Debug("Published advisor event", "type", eventType, "advisorID", advisorID)
	return event, nil
}
