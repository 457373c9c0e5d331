// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/team"
	"github.com/eduscrum/awards/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROCESS SPRINT AWARDS COMMAND
// Движок автоматических наград. Оценивает завершённый спринт и вручает
// приз "Light Speed" каждому студенту-участнику команд проекта - не более
// одного раза на студента в календарный день, и только если спринт
// завершён не позже плановой даты окончания (награда за пунктуальность).
// ══════════════════════════════════════════════════════════════════════════════

// Параметры автоматической награды по умолчанию.
const (
	// DefaultAwardPrizeName - название автоматического приза.
	DefaultAwardPrizeName = "Light Speed"

	// DefaultAwardPrizeValue - стоимость автоматического приза.
	DefaultAwardPrizeValue = 10

	// DefaultAwardPrizeDescription - описание автоматического приза.
	DefaultAwardPrizeDescription = "Automatic award: sprint completed on schedule!"
)

// ProcessSprintAwardsCommand содержит данные для оценки спринта.
type ProcessSprintAwardsCommand struct {
	// SprintID - завершённый спринт.
	SprintID string

	// EvaluatedAt - момент оценки, он же "сегодня" для ворот пунктуальности
	// и подавления повторов (нулевое время = сейчас).
	EvaluatedAt time.Time

	// CorrelationID - для трассировки.
	CorrelationID string
}

// Validate проверяет корректность команды.
func (c ProcessSprintAwardsCommand) Validate() error {
	if c.SprintID == "" {
		return shared.NewDomainError("gamification", "ProcessAwards", shared.ErrInvalidInput, "sprint_id is required")
	}
	return nil
}

// MemberFailure описывает участника, вручение которому не удалось.
type MemberFailure struct {
	// UserID - участник.
	UserID string

	// Err - причина.
	Err error
}

// ProcessSprintAwardsResult содержит итог оценки спринта.
type ProcessSprintAwardsResult struct {
	// OnSchedule - false, если спринт завершён после плановой даты;
	// в этом случае оценка - тихий no-op и остальные счётчики нулевые.
	OnSchedule bool

	// Evaluated - количество рассмотренных членств.
	Evaluated int

	// Granted - количество вручённых наград.
	Granted int

	// SkippedNonStudents - участники, не являющиеся студентами.
	SkippedNonStudents int

	// SkippedAlreadyAwarded - студенты, уже получившие награду сегодня.
	SkippedAlreadyAwarded int

	// Failures - участники, вручение которым не удалось. Сбой одного
	// участника не прерывает обход остальных.
	Failures []MemberFailure
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ProcessSprintAwardsConfig содержит настройки движка наград.
type ProcessSprintAwardsConfig struct {
	// PrizeName - название автоматического приза.
	PrizeName string

	// PrizeValue - стоимость автоматического приза.
	PrizeValue int

	// PrizeDescription - описание для создаваемого приза.
	PrizeDescription string

	// Location - опорный часовой пояс для календарных сравнений.
	Location *time.Location
}

// DefaultProcessSprintAwardsConfig возвращает настройки по умолчанию.
func DefaultProcessSprintAwardsConfig() ProcessSprintAwardsConfig {
	return ProcessSprintAwardsConfig{
		PrizeName:        DefaultAwardPrizeName,
		PrizeValue:       DefaultAwardPrizeValue,
		PrizeDescription: DefaultAwardPrizeDescription,
		Location:         time.UTC,
	}
}

// ProcessSprintAwardsHandler обрабатывает ProcessSprintAwardsCommand.
type ProcessSprintAwardsHandler struct {
	projectRepo project.Repository
	courseRepo  course.Repository
	teamRepo    team.Repository
	userRepo    user.Repository
	ledger      achievement.Repository

	ensurePrize *EnsureAutomaticPrizeHandler
	grant       *GrantPrizeHandler

	config ProcessSprintAwardsConfig
}

// NewProcessSprintAwardsHandler создаёт новый ProcessSprintAwardsHandler.
func NewProcessSprintAwardsHandler(
	projectRepo project.Repository,
	courseRepo course.Repository,
	teamRepo team.Repository,
	userRepo user.Repository,
	ledger achievement.Repository,
	ensurePrize *EnsureAutomaticPrizeHandler,
	grant *GrantPrizeHandler,
	config ProcessSprintAwardsConfig,
) *ProcessSprintAwardsHandler {
	if config.PrizeName == "" {
		config = DefaultProcessSprintAwardsConfig()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}

	return &ProcessSprintAwardsHandler{
		projectRepo: projectRepo,
		courseRepo:  courseRepo,
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		ensurePrize: ensurePrize,
		grant:       grant,
		config:      config,
	}
}

// Handle выполняет оценку завершённого спринта.
func (h *ProcessSprintAwardsHandler) Handle(ctx context.Context, cmd ProcessSprintAwardsCommand) (*ProcessSprintAwardsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.EvaluatedAt
	if now.IsZero() {
		now = time.Now()
	}

	sprint, err := h.projectRepo.GetSprint(ctx, cmd.SprintID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrSprintNotFound
		}
		return nil, fmt.Errorf("process_sprint_awards: failed to get sprint: %w", err)
	}

	result := &ProcessSprintAwardsResult{}

	// Ворота пунктуальности: если "сегодня" позже плановой даты окончания,
	// команда не уложилась в срок, наград нет. Это тихий успех, не ошибка.
	if shared.DayAfter(now, sprint.EndDate, h.config.Location) {
		result.OnSchedule = false
		return result, nil
	}
	result.OnSchedule = true

	proj, err := h.projectRepo.GetProject(ctx, sprint.ProjectID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrProjectNotFound
		}
		return nil, fmt.Errorf("process_sprint_awards: failed to get project: %w", err)
	}

	subject, err := h.courseRepo.GetSubject(ctx, proj.SubjectID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("process_sprint_awards: failed to get subject: %w", err)
	}

	teams, err := h.teamRepo.ListByProject(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("process_sprint_awards: failed to list teams: %w", err)
	}

	for _, t := range teams {
		members, err := h.teamRepo.ListMembers(ctx, t.ID)
		if err != nil {
			// Недоступность одной команды не отменяет остальных.
			result.Failures = append(result.Failures, MemberFailure{
				UserID: "",
				Err:    fmt.Errorf("failed to list members of team %s: %w", t.ID, err),
			})
			continue
		}

		for _, m := range members {
			result.Evaluated++
			h.awardMember(ctx, subject.ID, m, now, result)
		}
	}

	return result, nil
}

// awardMember оценивает одного участника. Сбои изолируются: ошибка
// попадает в result.Failures, обход продолжается.
func (h *ProcessSprintAwardsHandler) awardMember(
	ctx context.Context,
	subjectID string,
	m *team.Membership,
	now time.Time,
	result *ProcessSprintAwardsResult,
) {
	member, err := h.userRepo.GetByID(ctx, m.UserID)
	if err != nil {
		result.Failures = append(result.Failures, MemberFailure{UserID: m.UserID, Err: err})
		return
	}

	// Награду получают только студенты
	if !member.IsStudent() {
		result.SkippedNonStudents++
		return
	}

	// Не более одной награды на студента в календарный день, сколько бы
	// спринтов ни завершилось сегодня
	received, err := h.ledger.ReceivedOn(ctx, member.ID, h.config.PrizeName, now, h.config.Location)
	if err != nil {
		result.Failures = append(result.Failures, MemberFailure{UserID: m.UserID, Err: err})
		return
	}
	if received {
		result.SkippedAlreadyAwarded++
		return
	}

	ensured, err := h.ensurePrize.Handle(ctx, EnsureAutomaticPrizeCommand{
		SubjectID:   subjectID,
		Name:        h.config.PrizeName,
		Value:       h.config.PrizeValue,
		Description: h.config.PrizeDescription,
	})
	if err != nil {
		result.Failures = append(result.Failures, MemberFailure{UserID: m.UserID, Err: err})
		return
	}

	_, err = h.grant.Handle(ctx, GrantPrizeCommand{
		StudentID: member.ID,
		PrizeID:   ensured.Prize.ID,
		GrantedAt: now,
		Automatic: true,
	})
	if err != nil {
		result.Failures = append(result.Failures, MemberFailure{UserID: m.UserID, Err: err})
		return
	}

	result.Granted++
}
