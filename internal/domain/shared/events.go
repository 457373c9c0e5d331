// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Prize events
	EventPrizeCreated EventType = "gamification.prize_created"

	// Achievement events
	EventAchievementGranted EventType = "gamification.achievement_granted"
	EventPointsRecomputed   EventType = "gamification.points_recomputed"

	// Sprint events
	EventSprintCreated   EventType = "sprint.created"
	EventSprintCompleted EventType = "sprint.completed"

	// Award engine events
	EventSprintAwardsProcessed EventType = "gamification.sprint_awards_processed"

	// Ranking events
	EventRankingRefreshed EventType = "ranking.refreshed"

	// System events
	EventRepairCompleted EventType = "system.repair_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Prize Events
// ═══════════════════════════════════════════════════════════════════════════

// PrizeCreatedEvent is emitted when a new prize is defined in a subject.
type PrizeCreatedEvent struct {
	BaseEvent
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
	Value     int    `json:"value"`
	Kind      string `json:"kind"`
}

// Payload implements Event interface.
func (e PrizeCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"prize_id":   e.AggregateId,
		"subject_id": e.SubjectID,
		"name":       e.Name,
		"value":      e.Value,
		"kind":       e.Kind,
	}
}

// NewPrizeCreatedEvent creates a PrizeCreatedEvent.
func NewPrizeCreatedEvent(prizeID, subjectID, name string, value int, kind string) PrizeCreatedEvent {
	return PrizeCreatedEvent{
		BaseEvent: NewBaseEvent(EventPrizeCreated, prizeID),
		SubjectID: subjectID,
		Name:      name,
		Value:     value,
		Kind:      kind,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementGrantedEvent is emitted when a student receives a prize.
// The aggregate ID is the achievement ID; the event carries the new
// running total so read models can update without an extra query.
type AchievementGrantedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	PrizeID   string `json:"prize_id"`
	PrizeName string `json:"prize_name"`
	Value     int    `json:"value"`
	NewTotal  int    `json:"new_total"`
	Automatic bool   `json:"automatic"`
}

// Payload implements Event interface.
func (e AchievementGrantedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"achievement_id": e.AggregateId,
		"student_id":     e.StudentID,
		"prize_id":       e.PrizeID,
		"prize_name":     e.PrizeName,
		"value":          e.Value,
		"new_total":      e.NewTotal,
		"automatic":      e.Automatic,
	}
}

// NewAchievementGrantedEvent creates an AchievementGrantedEvent.
func NewAchievementGrantedEvent(achievementID, studentID, prizeID, prizeName string, value, newTotal int, automatic bool) AchievementGrantedEvent {
	return AchievementGrantedEvent{
		BaseEvent: NewBaseEvent(EventAchievementGranted, achievementID),
		StudentID: studentID,
		PrizeID:   prizeID,
		PrizeName: prizeName,
		Value:     value,
		NewTotal:  newTotal,
		Automatic: automatic,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Sprint Events
// ═══════════════════════════════════════════════════════════════════════════

// SprintCompletedEvent is emitted when a sprint transitions into COMPLETED,
// either at creation time or by a later state update. The automatic award
// engine subscribes to this event.
type SprintCompletedEvent struct {
	BaseEvent
	ProjectID string    `json:"project_id"`
	EndDate   time.Time `json:"end_date"`
}

// Payload implements Event interface.
func (e SprintCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"sprint_id":  e.AggregateId,
		"project_id": e.ProjectID,
		"end_date":   e.EndDate,
	}
}

// NewSprintCompletedEvent creates a SprintCompletedEvent.
func NewSprintCompletedEvent(sprintID, projectID string, endDate time.Time) SprintCompletedEvent {
	return SprintCompletedEvent{
		BaseEvent: NewBaseEvent(EventSprintCompleted, sprintID),
		ProjectID: projectID,
		EndDate:   endDate,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Award Engine Events
// ═══════════════════════════════════════════════════════════════════════════

// SprintAwardsProcessedEvent summarizes one automatic award evaluation.
type SprintAwardsProcessedEvent struct {
	BaseEvent
	ProjectID string `json:"project_id"`
	Granted   int    `json:"granted"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// Payload implements Event interface.
func (e SprintAwardsProcessedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"sprint_id":  e.AggregateId,
		"project_id": e.ProjectID,
		"granted":    e.Granted,
		"skipped":    e.Skipped,
		"failed":     e.Failed,
	}
}

// NewSprintAwardsProcessedEvent creates a SprintAwardsProcessedEvent.
func NewSprintAwardsProcessedEvent(sprintID, projectID string, granted, skipped, failed int) SprintAwardsProcessedEvent {
	return SprintAwardsProcessedEvent{
		BaseEvent: NewBaseEvent(EventSprintAwardsProcessed, sprintID),
		ProjectID: projectID,
		Granted:   granted,
		Skipped:   skipped,
		Failed:    failed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler processes a single domain event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber subscribes handlers to domain events.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
