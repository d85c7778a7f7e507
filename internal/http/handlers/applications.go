package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"campusboard/internal/models"
	"campusboard/internal/storage/postgres"
	"campusboard/internal/storage/redis"
	"campusboard/internal/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	deps *Context
}

func NewApplicationHandler(deps *Context) *ApplicationHandler {
	return &ApplicationHandler{deps: deps}
}

type interviewGroups struct {
	Ongoing  []models.Application `json:"ongoing"`
	Finished []models.Application `json:"finished"`
}

type listResponse struct {
	Applications []models.Application `json:"applications"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	Counts       map[tracker.Tab]int  `json:"counts"`
	Interview    *interviewGroups     `json:"interview,omitempty"`
	LogoURLs     map[string]string    `json:"logo_urls"`
	AvatarURLs   map[string]string    `json:"avatar_urls"`
}

// List serves the derived applications view: search, facet filters,
// tab selection, sort and pagination run in process over the student's
// snapshot, then the visible page is enriched with signed image URLs.
func (h *ApplicationHandler) List(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
		return
	}

	apps, err := h.deps.Store.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.deps.Logger.Error("failed to load applications",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications"})
		return
	}

	// a missing score snapshot degrades to the stored scores
	scores, err := h.deps.Cache.GetMatchScores(c.Request.Context(), studentID)
	if err != nil && !errors.Is(err, redis.ErrCacheMiss) {
		h.deps.Logger.Warn("failed to read score snapshot",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
	}
	apps = tracker.MergeScores(apps, scores)

	view := tracker.Derive(apps, parseListRequest(c))

	resp := listResponse{
		Applications: view.Records,
		Page:         view.Page,
		TotalPages:   view.TotalPages,
		Counts:       view.Counts,
		LogoURLs:     map[string]string{},
		AvatarURLs:   map[string]string{},
	}

	if view.Interview != nil {
		resp.Interview = &interviewGroups{
			Ongoing:  view.Interview.Ongoing,
			Finished: view.Interview.Finished,
		}
	}

	// image resolution failures mean "no image", never an error
	if batch := h.deps.Resolver.Resolve(c.Request.Context(), studentID, view.Records); batch != nil {
		resp.LogoURLs = batch.Logos
		resp.AvatarURLs = batch.Avatars
	}

	c.JSON(http.StatusOK, resp)
}

// Tabs serves just the per-tab counts for the current search and
// filter state, for clients refreshing badges without a page reload.
func (h *ApplicationHandler) Tabs(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
		return
	}

	apps, err := h.deps.Store.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.deps.Logger.Error("failed to load applications",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load applications"})
		return
	}

	req := parseListRequest(c)
	matched := tracker.ApplySearch(apps, req.Query)
	matched = tracker.ApplyFilters(matched, req.Filters)

	c.JSON(http.StatusOK, gin.H{
		"counts": tracker.TabCounts(matched, req.View),
	})
}

func parseListRequest(c *gin.Context) tracker.Request {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	return tracker.Request{
		Tab:     tracker.ParseTab(c.Query("tab")),
		Query:   c.Query("q"),
		Filters: parseFilters(c),
		SortBy:  tracker.ParseSortKey(c.Query("sort")),
		Order:   tracker.ParseOrder(c.Query("order")),
		Page:    page,
		View:    models.ParseViewMode(c.Query("view")),
	}
}

func parseFilters(c *gin.Context) tracker.Filters {
	f := tracker.Filters{
		Statuses:    c.QueryArray("status"),
		WorkTypes:   c.QueryArray("work_type"),
		RemoteModes: c.QueryArray("remote_mode"),
		Locations:   c.QueryArray("location"),
		PayTypes:    c.QueryArray("pay_type"),
		Tiers:       c.QueryArray("tier"),
		Companies:   c.QueryArray("company"),
	}

	if raw := c.Query("score_min"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			f.ScoreMin = &v
		}
	}
	if raw := c.Query("score_max"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			f.ScoreMax = &v
		}
	}

	if t, ok := parseDateParam(c.Query("applied_from")); ok {
		f.AppliedFrom = &t
	}
	if t, ok := parseDateParam(c.Query("applied_to")); ok {
		f.AppliedTo = &t
	}

	return f
}

func parseDateParam(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Withdraw handles POST /applications/:id/withdraw.
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	h.mutateStatus(c, h.deps.Store.Withdraw, "withdraw")
}

// AcceptOffer handles POST /applications/:id/offer/accept.
func (h *ApplicationHandler) AcceptOffer(c *gin.Context) {
	h.mutateStatus(c, h.deps.Store.AcceptOffer, "accept offer")
}

// RejectOffer handles POST /applications/:id/offer/reject.
func (h *ApplicationHandler) RejectOffer(c *gin.Context) {
	h.mutateStatus(c, h.deps.Store.RejectOffer, "reject offer")
}

func (h *ApplicationHandler) mutateStatus(c *gin.Context, op func(context.Context, string) error, action string) {
	applicationID := c.Param("id")

	err := op(c.Request.Context(), applicationID)
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
	case errors.Is(err, postgres.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "current status does not allow this action"})
	case err != nil:
		h.deps.Logger.Error("status mutation failed",
			zap.String("application_id", applicationID),
			zap.String("action", action),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// FollowUp handles POST /applications/:id/follow-up.
func (h *ApplicationHandler) FollowUp(c *gin.Context) {
	applicationID := c.Param("id")

	err := h.deps.Store.MarkFollowedUp(c.Request.Context(), applicationID)
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
	case err != nil:
		h.deps.Logger.Error("failed to mark follow-up",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark follow-up"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

type archiveRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

// Archive handles POST /applications/:id/archive.
func (h *ApplicationHandler) Archive(c *gin.Context) {
	applicationID := c.Param("id")

	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "archived flag is required"})
		return
	}

	err := h.deps.Store.SetArchived(c.Request.Context(), applicationID, *req.Archived)
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
	case err != nil:
		h.deps.Logger.Error("failed to set archived flag",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update archive flag"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

type noteRequest struct {
	Body string `json:"body" binding:"required"`
}

// AddNote handles POST /applications/:id/notes.
func (h *ApplicationHandler) AddNote(c *gin.Context) {
	applicationID := c.Param("id")

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note body is required"})
		return
	}

	note, err := h.deps.Store.AddNote(c.Request.Context(), applicationID, req.Body)
	if err != nil {
		h.deps.Logger.Error("failed to add note",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add note"})
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /applications/:id/notes.
func (h *ApplicationHandler) ListNotes(c *gin.Context) {
	applicationID := c.Param("id")

	notes, err := h.deps.Store.ListNotes(c.Request.Context(), applicationID)
	if err != nil {
		h.deps.Logger.Error("failed to list notes",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notes"})
		return
	}

	if notes == nil {
		notes = []models.Note{}
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}
