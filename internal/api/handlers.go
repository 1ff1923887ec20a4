package api

import (
	"fmt"
	"net/http"
	"strconv"

	"cebuano/internal/domain"
	"cebuano/internal/middleware"
	"cebuano/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StudyHandler serves the study endpoints
type StudyHandler struct {
	study  *service.StudyService
	logger *zap.Logger
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(study *service.StudyService, logger *zap.Logger) *StudyHandler {
	return &StudyHandler{
		study:  study,
		logger: logger.With(zap.String("handler", "StudyHandler")),
	}
}

func (h *StudyHandler) kind(c *gin.Context) (domain.ItemKind, bool) {
	kind, err := domain.ParseItemKind(c.Param("kind"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "unknown_kind", err)
		return "", false
	}
	return kind, true
}

// GET /api/:kind/due
// Select the learner's next study session.
func (h *StudyHandler) GetDue(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var opts service.SessionOptions
	params := []struct {
		name   string
		target *int
	}{
		{"limit", &opts.Limit},
		{"newDailyCap", &opts.NewDailyCap},
	}
	for _, p := range params {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, "invalid_query",
				fmt.Errorf("query parameter %s must be a non-negative integer", p.name))
			return
		}
		*p.target = n
	}

	items, err := h.study.Session(c.Request.Context(), kind, middleware.UserID(c), opts)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, newItemDTO(it))
	}
	c.JSON(http.StatusOK, DueResponse{Kind: kind, Items: dtos})
}

// POST /api/:kind/reviews
// Record a rating for one item.
func (h *StudyHandler) PostReview(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	userID := middleware.UserID(c)
	state, err := h.study.Review(c.Request.Context(), kind, userID, req.ItemID, rating)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	h.logger.Debug("Review recorded",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.String("item_id", req.ItemID),
		zap.String("rating", string(rating)),
		zap.Int("interval", state.Interval))
	c.JSON(http.StatusOK, ReviewResponse{ReviewState: newReviewStateDTO(state)})
}

// GET /api/:kind/progress
// Summarize the learner's progress.
func (h *StudyHandler) GetProgress(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	progress, err := h.study.Progress(c.Request.Context(), kind, middleware.UserID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{
		TotalLearned: progress.TotalLearned,
		DueToday:     progress.DueToday,
		Streak:       progress.Streak,
	})
}

// GET /api/settings
func (h *StudyHandler) GetSettings(c *gin.Context) {
	settings, err := h.study.Settings().GetSettings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PUT /api/settings
// Update some or all of the learner's settings. Out-of-range values are rejected.
func (h *StudyHandler) PutSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	current, err := h.study.Settings().GetSettings(ctx, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	stored, err := h.study.Settings().UpdateSettings(ctx, userID, req.Apply(current))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
