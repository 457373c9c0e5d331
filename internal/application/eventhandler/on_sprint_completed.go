// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduscrum/awards/internal/application/command"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON SPRINT COMPLETED HANDLER
// Обрабатывает событие завершения спринта и запускает движок автоматических
// наград.
//
// Последовательность:
// 1. Спринт переходит в состояние COMPLETED (при создании или обновлении)
// 2. Публикуется событие sprint.completed
// 3. Этот обработчик передаёт спринт в ProcessSprintAwardsHandler
// 4. Движок сам решает, заслужила ли команда награду (пунктуальность)
//
// Ошибки обработки не прерывают публикацию события для других подписчиков.
// ═══════════════════════════════════════════════════════════════════════════

// OnSprintCompletedHandler обрабатывает событие завершения спринта.
type OnSprintCompletedHandler struct {
	awards *command.ProcessSprintAwardsHandler

	logger *slog.Logger

	config SprintCompletedConfig
}

// SprintCompletedConfig содержит конфигурацию обработчика.
type SprintCompletedConfig struct {
	// Enabled - запускать ли движок автоматических наград.
	// Выключатель на случай ручного пересчёта или миграции данных.
	Enabled bool

	// Timeout - максимальное время обработки одного спринта.
	Timeout time.Duration
}

// DefaultSprintCompletedConfig возвращает конфигурацию по умолчанию.
func DefaultSprintCompletedConfig() SprintCompletedConfig {
	return SprintCompletedConfig{
		Enabled: true,
		Timeout: 30 * time.Second,
	}
}

// NewOnSprintCompletedHandler создаёт новый обработчик завершения спринта.
func NewOnSprintCompletedHandler(
	awards *command.ProcessSprintAwardsHandler,
	logger *slog.Logger,
	config SprintCompletedConfig,
) *OnSprintCompletedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnSprintCompletedHandler{
		awards: awards,
		logger: logger.With("handler", "on_sprint_completed"),
		config: config,
	}
}

// Handle обрабатывает событие завершения спринта.
func (h *OnSprintCompletedHandler) Handle(event shared.Event) error {
	sprintEvent, ok := event.(shared.SprintCompletedEvent)
	if !ok {
		h.logger.Warn("received non-SprintCompletedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	if !h.config.Enabled {
		h.logger.Debug("automatic awards disabled, skipping",
			"sprint_id", sprintEvent.AggregateID(),
		)
		return nil
	}

	ctx := context.Background()
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	h.logger.Info("processing sprint completed event",
		"sprint_id", sprintEvent.AggregateID(),
		"project_id", sprintEvent.ProjectID,
		"end_date", sprintEvent.EndDate,
	)

	result, err := h.awards.Handle(ctx, command.ProcessSprintAwardsCommand{
		SprintID:      sprintEvent.AggregateID(),
		CorrelationID: sprintEvent.CorrelationID,
	})
	if err != nil {
		h.logger.Error("failed to process sprint awards",
			"sprint_id", sprintEvent.AggregateID(),
			"error", err,
		)
		return fmt.Errorf("process sprint awards: %w", err)
	}

	h.logger.Info("sprint awards processed",
		"sprint_id", sprintEvent.AggregateID(),
		"on_schedule", result.OnSchedule,
		"evaluated", result.Evaluated,
		"granted", result.Granted,
		"skipped_already_awarded", result.SkippedAlreadyAwarded,
		"failures", len(result.Failures),
	)

	// Проблемы отдельных участников логируем, но не считаем ошибкой события
	for _, f := range result.Failures {
		h.logger.Warn("member award failed",
			"sprint_id", sprintEvent.AggregateID(),
			"user_id", f.UserID,
			"error", f.Err,
		)
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnSprintCompletedHandler) EventType() shared.EventType {
	return shared.EventSprintCompleted
}
