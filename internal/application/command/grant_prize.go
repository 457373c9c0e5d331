// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRANT PRIZE COMMAND
// Вручает приз студенту: добавляет запись в леджер достижений и атомарно
// увеличивает сумму очков. Дедупликации на этом уровне нет намеренно -
// преподаватель вправе вручить один и тот же приз дважды; подавление
// повторов для автоматических наград лежит на движке наград.
// ══════════════════════════════════════════════════════════════════════════════

// GrantPrizeCommand содержит данные для вручения приза.
type GrantPrizeCommand struct {
	// StudentID - студент, получающий приз.
	StudentID string

	// PrizeID - вручаемый приз.
	PrizeID string

	// GrantedAt - момент вручения (нулевое время = сейчас).
	GrantedAt time.Time

	// Automatic - true для вручений, инициированных движком наград.
	Automatic bool

	// CorrelationID - для трассировки.
	CorrelationID string
}

// Validate проверяет корректность команды.
func (c GrantPrizeCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("achievement", "Grant", shared.ErrInvalidInput, "student_id is required")
	}
	if c.PrizeID == "" {
		return shared.NewDomainError("achievement", "Grant", shared.ErrInvalidInput, "prize_id is required")
	}
	return nil
}

// GrantPrizeResult содержит результат вручения.
type GrantPrizeResult struct {
	// Achievement - созданная запись леджера.
	Achievement *achievement.Achievement

	// Prize - вручённый приз.
	Prize *prize.Prize

	// NewTotal - сумма очков студента после вручения.
	NewTotal shared.Points
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GrantPrizeHandler обрабатывает GrantPrizeCommand.
type GrantPrizeHandler struct {
	userRepo  user.Repository
	prizeRepo prize.Repository
	ledger    achievement.Repository
	publisher shared.EventPublisher
}

// NewGrantPrizeHandler создаёт новый GrantPrizeHandler.
func NewGrantPrizeHandler(
	userRepo user.Repository,
	prizeRepo prize.Repository,
	ledger achievement.Repository,
	publisher shared.EventPublisher,
) *GrantPrizeHandler {
	return &GrantPrizeHandler{
		userRepo:  userRepo,
		prizeRepo: prizeRepo,
		ledger:    ledger,
		publisher: publisher,
	}
}

// Handle выполняет вручение. Ошибки NotFound различают, какая именно
// ссылка не разрешилась - студент или приз.
func (h *GrantPrizeHandler) Handle(ctx context.Context, cmd GrantPrizeCommand) (*GrantPrizeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Студент должен существовать и быть студентом
	stud, err := h.userRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("grant_prize: failed to get student: %w", err)
	}
	if !stud.IsStudent() {
		return nil, shared.ErrNotAStudent
	}

	// Приз должен существовать
	prz, err := h.prizeRepo.GetByID(ctx, cmd.PrizeID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrPrizeNotFound
		}
		return nil, fmt.Errorf("grant_prize: failed to get prize: %w", err)
	}

	grantedAt := cmd.GrantedAt
	if grantedAt.IsZero() {
		grantedAt = time.Now().UTC()
	}

	ach, err := achievement.New(uuid.NewString(), stud.ID, prz.ID, grantedAt)
	if err != nil {
		return nil, shared.WrapError("achievement", "Grant", shared.ErrInvalidInput, "invalid achievement", err)
	}

	// Запись леджера и обновление суммы очков - одна транзакция:
	// чтение рейтинга не должно видеть одно без другого.
	if err := h.ledger.Append(ctx, ach, prz.Value); err != nil {
		return nil, fmt.Errorf("grant_prize: failed to append to ledger: %w", err)
	}

	newTotal := stud.TotalPoints.Add(prz.Value)

	if h.publisher != nil {
		event := shared.NewAchievementGrantedEvent(
			ach.ID, stud.ID, prz.ID, prz.Name, prz.Value.Int(), newTotal.Int(), cmd.Automatic,
		)
		event.CorrelationID = cmd.CorrelationID
		_ = h.publisher.Publish(event)
	}

	return &GrantPrizeResult{
		Achievement: ach,
		Prize:       prz,
		NewTotal:    newTotal,
	}, nil
}
