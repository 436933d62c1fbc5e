package admin

import (
	"errors"
	"net/http"
	"time"

	"launch-line/internal/auth"
	"launch-line/internal/schedule"
	"launch-line/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers exposes the scheduling operations over the admin API.
// Everything here is thin: parse, validate the caller-owned invariants,
// delegate to internal/schedule.
type Handlers struct {
	Auth   *auth.Manager
	Store  schedule.Store
	Wizard *schedule.Wizard
}

type loginRequest struct {
	User     string `json:"user" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user and password are required"})
		return
	}
	if err := h.Auth.CheckCredentials(req.User, req.Password); err != nil {
		logger.FromGin(c).Warn("admin login rejected", "user", req.User)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), req.User)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h Handlers) ListWindows(c *gin.Context) {
	ws, err := h.Store.List(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("window list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": ws})
}

type upsertRequest struct {
	ID        int64  `json:"id"`
	ShortName string `json:"short_name" binding:"required"`

	Lower time.Time `json:"lower" binding:"required"`
	Upper time.Time `json:"upper" binding:"required"`

	WebShortText string `json:"web_short_text"`
	WebLongText  string `json:"web_long_text"`

	CallText  string `json:"call_text"`
	ForwardTo int64  `json:"forward_to"`
}

// UpsertWindow writes one window with conflict resolution and reports
// what happened to the windows it displaced.
func (h Handlers) UpsertWindow(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w := schedule.Window{
		ShortName:    req.ShortName,
		Lower:        req.Lower.UTC(),
		Upper:        req.Upper.UTC(),
		WebShortText: req.WebShortText,
		WebLongText:  req.WebLongText,
		CallText:     req.CallText,
		ForwardTo:    req.ForwardTo,
	}
	// The store only owns the range invariant; exactly-one-of is ours.
	if err := w.ValidateBody(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actions, err := h.Store.Upsert(c.Request.Context(), w, req.ID)
	switch {
	case errors.Is(err, schedule.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, schedule.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, schedule.ErrConflictWrite):
		// Nothing was applied; the client may retry.
		logger.FromGin(c).Error("window upsert rolled back", "err", err)
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "write conflict, retry"})
	case err != nil:
		logger.FromGin(c).Error("window upsert failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "upsert failed"})
	default:
		if actions == nil {
			actions = []schedule.ConflictAction{}
		}
		c.JSON(http.StatusOK, gin.H{"conflicts": actions})
	}
}

type launchRequest struct {
	Launch    time.Time `json:"launch" binding:"required"`
	ShortName string    `json:"short_name" binding:"required"`

	WebShortText string `json:"web_short_text"`
	WebLongText  string `json:"web_long_text"`

	CallText  string `json:"call_text" binding:"required"`
	ForwardTo int64  `json:"forward_to" binding:"required"`
}

// ScheduleLaunch derives and inserts the announcement and forward
// windows for one launch instant.
func (h Handlers) ScheduleLaunch(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.Wizard.Schedule(c.Request.Context(), schedule.LaunchInput{
		Launch:       req.Launch,
		ShortName:    req.ShortName,
		WebShortText: req.WebShortText,
		WebLongText:  req.WebLongText,
		CallText:     req.CallText,
		ForwardTo:    req.ForwardTo,
	})
	switch {
	case errors.Is(err, schedule.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		logger.FromGin(c).Error("launch scheduling failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "scheduling failed"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"call_window":    gin.H{"lower": plan.CallLower, "upper": plan.ForwardLower},
			"forward_window": gin.H{"lower": plan.ForwardLower, "upper": plan.ForwardUpper},
		})
	}
}
