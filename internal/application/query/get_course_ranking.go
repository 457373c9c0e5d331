package query

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE RANKING QUERY
// Рейтинг внутри курса: те же правила сортировки, что у глобального рейтинга,
// но только для студентов, записанных на курс.
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseRankingQuery содержит параметры запроса.
type GetCourseRankingQuery struct {
	// CourseID - ID курса (обязательно).
	CourseID string

	// Limit - максимум записей (0 = без ограничения).
	Limit int
}

// Validate проверяет корректность параметров.
func (q *GetCourseRankingQuery) Validate() error {
	if q.CourseID == "" {
		return fmt.Errorf("get_course_ranking: course_id is required")
	}
	if q.Limit < 0 {
		return fmt.Errorf("get_course_ranking: limit cannot be negative")
	}
	return nil
}

// GetCourseRankingResult содержит результат запроса.
type GetCourseRankingResult struct {
	CourseID    string            `json:"course_id"`
	CourseName  string            `json:"course_name"`
	Entries     []RankingEntryDTO `json:"entries"`
	TotalCount  int               `json:"total_count"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// GetCourseRankingHandler обрабатывает GetCourseRankingQuery.
type GetCourseRankingHandler struct {
	userRepo   user.Repository
	courseRepo course.Repository
}

// NewGetCourseRankingHandler создаёт новый GetCourseRankingHandler.
func NewGetCourseRankingHandler(userRepo user.Repository, courseRepo course.Repository) *GetCourseRankingHandler {
	return &GetCourseRankingHandler{userRepo: userRepo, courseRepo: courseRepo}
}

// Handle выполняет запрос рейтинга курса.
func (h *GetCourseRankingHandler) Handle(ctx context.Context, q GetCourseRankingQuery) (*GetCourseRankingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	crs, err := h.courseRepo.GetCourse(ctx, q.CourseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("get_course_ranking: failed to load course: %w", err)
	}

	students, err := h.userRepo.ListStudentsByCourse(ctx, q.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_course_ranking: failed to list students: %w", err)
	}

	entries := buildRankingEntries(students)

	return &GetCourseRankingResult{
		CourseID:    crs.ID,
		CourseName:  crs.Name,
		Entries:     limitEntries(entries, q.Limit),
		TotalCount:  len(entries),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
