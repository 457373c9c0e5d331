// Package http implements the REST API for EduScrum Awards.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/eduscrum/awards/internal/application/command"
	"github.com/eduscrum/awards/internal/application/query"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "EduScrum Awards API",
		"version":     "v1",
		"description": "REST API for the EduScrum gamification backend: prizes, achievements and rankings",
		"endpoints": map[string]string{
			"health":         "/health",
			"global_ranking": "/api/v1/rankings/global",
			"course_ranking": "/api/v1/courses/{id}/ranking",
			"team_ranking":   "/api/v1/projects/{id}/teams/ranking",
			"prizes":         "/api/v1/subjects/{id}/prizes",
			"achievements":   "/api/v1/students/{id}/achievements",
			"stats":          "/api/v1/stats",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetGlobalRanking handles GET /api/v1/rankings/global
func (s *Server) handleGetGlobalRanking(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetGlobalRankingHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Ranking handler not configured")
		return
	}

	q := query.GetGlobalRankingQuery{
		Limit: getQueryParamInt(r, "limit", 0),
	}

	result, err := s.deps.GetGlobalRankingHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get global ranking")
		return
	}

	meta := &ResponseMeta{TotalCount: result.TotalCount}
	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// handleGetCourseRanking handles GET /api/v1/courses/{id}/ranking
func (s *Server) handleGetCourseRanking(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	if courseID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Course ID is required")
		return
	}

	if s.deps.GetCourseRankingHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Course ranking handler not configured")
		return
	}

	q := query.GetCourseRankingQuery{
		CourseID: courseID,
		Limit:    getQueryParamInt(r, "limit", 0),
	}

	result, err := s.deps.GetCourseRankingHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get course ranking")
		return
	}

	meta := &ResponseMeta{TotalCount: result.TotalCount}
	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// handleGetTeamRanking handles GET /api/v1/projects/{id}/teams/ranking
func (s *Server) handleGetTeamRanking(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Project ID is required")
		return
	}

	if s.deps.GetTeamRankingHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Team ranking handler not configured")
		return
	}

	q := query.GetTeamRankingQuery{ProjectID: projectID}

	result, err := s.deps.GetTeamRankingHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to get team ranking")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PRIZE CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListPrizes handles GET /api/v1/subjects/{id}/prizes
func (s *Server) handleListPrizes(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")
	if subjectID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Subject ID is required")
		return
	}

	if s.deps.ListPrizesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Prize handler not configured")
		return
	}

	q := query.ListPrizesQuery{
		SubjectID: subjectID,
		Kind:      prize.Kind(getQueryParam(r, "kind", "")),
	}

	result, err := s.deps.ListPrizesHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to list prizes")
		return
	}

	meta := &ResponseMeta{TotalCount: result.TotalCount}
	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// createPrizeRequest is the request body for POST /api/v1/subjects/{id}/prizes.
type createPrizeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Value       int    `json:"value"`
	Kind        string `json:"kind"`
}

// prizeResponse is the wire representation of a prize.
type prizeResponse struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Value       int       `json:"value"`
	Kind        string    `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
}

// handleCreatePrize handles POST /api/v1/subjects/{id}/prizes
func (s *Server) handleCreatePrize(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")
	if subjectID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Subject ID is required")
		return
	}

	if s.deps.CreatePrizeHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Prize handler not configured")
		return
	}

	var req createPrizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = string(prize.KindManual)
	}

	cmd := command.CreatePrizeCommand{
		SubjectID:     subjectID,
		Name:          req.Name,
		Description:   req.Description,
		Value:         req.Value,
		Kind:          kind,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.CreatePrizeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to create prize")
		return
	}

	p := result.Prize
	writeJSON(w, http.StatusCreated, prizeResponse{
		ID:          p.ID,
		SubjectID:   p.SubjectID,
		Name:        p.Name,
		Description: p.Description,
		Value:       p.Value.Int(),
		Kind:        string(p.Kind),
		CreatedAt:   p.CreatedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListAchievements handles GET /api/v1/students/{id}/achievements
func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if s.deps.ListAchievementsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Achievement handler not configured")
		return
	}

	q := query.ListAchievementsQuery{StudentID: studentID}

	result, err := s.deps.ListAchievementsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to list achievements")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// grantPrizeRequest is the request body for POST /api/v1/achievements.
type grantPrizeRequest struct {
	StudentID string `json:"student_id"`
	PrizeID   string `json:"prize_id"`
}

// grantPrizeResponse is the wire representation of a grant.
type grantPrizeResponse struct {
	AchievementID string    `json:"achievement_id"`
	StudentID     string    `json:"student_id"`
	PrizeID       string    `json:"prize_id"`
	PrizeName     string    `json:"prize_name"`
	PrizeValue    int       `json:"prize_value"`
	GrantedAt     time.Time `json:"granted_at"`
	NewTotal      int       `json:"new_total"`
}

// handleGrantPrize handles POST /api/v1/achievements
func (s *Server) handleGrantPrize(w http.ResponseWriter, r *http.Request) {
	if s.deps.GrantPrizeHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Grant handler not configured")
		return
	}

	var req grantPrizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.GrantPrizeCommand{
		StudentID:     req.StudentID,
		PrizeID:       req.PrizeID,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.GrantPrizeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to grant prize")
		return
	}

	writeJSON(w, http.StatusCreated, grantPrizeResponse{
		AchievementID: result.Achievement.ID,
		StudentID:     result.Achievement.StudentID,
		PrizeID:       result.Prize.ID,
		PrizeName:     result.Prize.Name,
		PrizeValue:    result.Prize.Value.Int(),
		GrantedAt:     result.Achievement.GrantedAt,
		NewTotal:      result.NewTotal.Int(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SPRINT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// createSprintRequest is the request body for POST /api/v1/projects/{id}/sprints.
type createSprintRequest struct {
	Name      string    `json:"name"`
	Goals     string    `json:"goals"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	State     string    `json:"state"`
}

// sprintResponse is the wire representation of a sprint.
type sprintResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Goals     string    `json:"goals"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// handleCreateSprint handles POST /api/v1/projects/{id}/sprints
func (s *Server) handleCreateSprint(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Project ID is required")
		return
	}

	if s.deps.CreateSprintHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sprint handler not configured")
		return
	}

	var req createSprintRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.CreateSprintCommand{
		ProjectID:     projectID,
		Name:          req.Name,
		Goals:         req.Goals,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		State:         req.State,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.CreateSprintHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to create sprint")
		return
	}

	writeJSON(w, http.StatusCreated, sprintToResponse(result.Sprint))
}

// handleCompleteSprint handles POST /api/v1/sprints/{id}/complete
func (s *Server) handleCompleteSprint(w http.ResponseWriter, r *http.Request) {
	sprintID := r.PathValue("id")
	if sprintID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Sprint ID is required")
		return
	}

	if s.deps.CompleteSprintHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sprint handler not configured")
		return
	}

	cmd := command.CompleteSprintCommand{
		SprintID:      sprintID,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.CompleteSprintHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to complete sprint")
		return
	}

	writeJSON(w, http.StatusOK, sprintToResponse(result.Sprint))
}

// processAwardsRequest is the request body for POST /api/v1/sprints/{id}/awards.
type processAwardsRequest struct {
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// processAwardsResponse is the wire representation of an award evaluation.
type processAwardsResponse struct {
	SprintID              string   `json:"sprint_id"`
	OnSchedule            bool     `json:"on_schedule"`
	Evaluated             int      `json:"evaluated"`
	Granted               int      `json:"granted"`
	SkippedNonStudents    int      `json:"skipped_non_students"`
	SkippedAlreadyAwarded int      `json:"skipped_already_awarded"`
	Failures              []string `json:"failures,omitempty"`
}

// handleProcessSprintAwards handles POST /api/v1/sprints/{id}/awards
func (s *Server) handleProcessSprintAwards(w http.ResponseWriter, r *http.Request) {
	sprintID := r.PathValue("id")
	if sprintID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Sprint ID is required")
		return
	}

	if s.deps.ProcessSprintAwardsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Awards handler not configured")
		return
	}

	// Empty body is fine: evaluation time defaults to now
	var req processAwardsRequest
	if r.ContentLength > 0 && !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.ProcessSprintAwardsCommand{
		SprintID:      sprintID,
		EvaluatedAt:   req.EvaluatedAt,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.ProcessSprintAwardsHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "Failed to process sprint awards")
		return
	}

	resp := processAwardsResponse{
		SprintID:              sprintID,
		OnSchedule:            result.OnSchedule,
		Evaluated:             result.Evaluated,
		Granted:               result.Granted,
		SkippedNonStudents:    result.SkippedNonStudents,
		SkippedAlreadyAwarded: result.SkippedAlreadyAwarded,
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, f.UserID+": "+f.Err.Error())
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStats handles GET /api/v1/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"server": map[string]interface{}{
			"uptime":  s.Uptime().String(),
			"running": s.IsRunning(),
		},
	}

	// Add ranking stats if handler is available
	if s.deps.GetGlobalRankingHandler != nil {
		result, err := s.deps.GetGlobalRankingHandler.Handle(r.Context(), query.GetGlobalRankingQuery{Limit: 1})
		if err == nil {
			topPoints := 0
			if len(result.Entries) > 0 {
				topPoints = result.Entries[0].TotalPoints
			}
			stats["ranking"] = map[string]interface{}{
				"total_students": result.TotalCount,
				"top_points":     topPoints,
				"from_cache":     result.FromCache,
			}
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody reads and decodes a JSON request body. Returns false after
// writing an error response when the body is unreadable or malformed.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		s.logger.Error("failed to read request body", logger.Err(err))
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return false
	}
	return true
}

// writeDomainError maps domain errors to HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsStateTransition(err):
		writeJSONError(w, http.StatusConflict, "state_conflict", err.Error())
	default:
		s.logger.Error("request failed",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

// sprintToResponse converts a sprint entity to its wire representation.
func sprintToResponse(sp *project.Sprint) sprintResponse {
	return sprintResponse{
		ID:        sp.ID,
		ProjectID: sp.ProjectID,
		Name:      sp.Name,
		Goals:     sp.Goals,
		StartDate: sp.StartDate,
		EndDate:   sp.EndDate,
		State:     string(sp.State),
		CreatedAt: sp.CreatedAt,
	}
}
