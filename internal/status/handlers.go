package status

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"launch-line/internal/schedule"
	"launch-line/pkg/logger"
	"launch-line/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// noneScheduledText mirrors the spoken nothing-scheduled notice for the
// web surface.
const noneScheduledText = "No upcoming launches in the next three days"

const cacheKey = "launch-line:web_status"

// Handlers serves the public, non-voice surface: the JSON status feed
// and the heartbeat.
type Handlers struct {
	Resolver *schedule.Resolver

	DB *sql.DB

	// Cache is optional; when set, the status payload is cached for
	// CacheTTL. Cache failures degrade to a direct read, never to an
	// error.
	Cache    *redis.Client
	CacheTTL time.Duration

	Now func() time.Time
}

type statusPayload struct {
	Short string `json:"short"`
	Long  string `json:"long"`
}

// WebStatus returns the active window's display texts, or the
// nothing-scheduled notice.
func (h Handlers) WebStatus(c *gin.Context) {
	log := logger.FromGin(c)
	ctx := c.Request.Context()

	if h.Cache != nil {
		if raw, err := h.Cache.Get(ctx, cacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		} else if err != redis.Nil {
			log.Warn("status cache read failed", "err", err)
		}
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	active, err := h.Resolver.ActiveAt(ctx, now().UTC())
	if err != nil {
		log.Error("active window lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "status unavailable"})
		return
	}

	payload := statusPayload{Short: noneScheduledText, Long: noneScheduledText}
	if active != nil {
		payload = statusPayload{Short: active.WebShortText, Long: active.WebLongText}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "status unavailable"})
		return
	}
	if h.Cache != nil {
		ttl := h.CacheTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		if err := h.Cache.Set(ctx, cacheKey, raw, ttl).Err(); err != nil {
			log.Warn("status cache write failed", "err", err)
		}
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Invalidate drops the cached payload; window writes call this so admins
// see their edit on the next poll.
func (h Handlers) Invalidate(c *gin.Context) {
	if h.Cache == nil {
		c.Next()
		return
	}
	c.Next()
	if c.Writer.Status() < 400 {
		if err := h.Cache.Del(c.Request.Context(), cacheKey).Err(); err != nil {
			logger.FromGin(c).Warn("status cache invalidation failed", "err", err)
		}
	}
}

// Heartbeat pings the database so external monitoring notices a dead
// store before a caller does.
func (h Handlers) Heartbeat(c *gin.Context) {
	if h.DB != nil {
		if err := utils.HealthCheck(c.Request.Context(), h.DB, 5*time.Second); err != nil {
			logger.FromGin(c).Error("heartbeat db ping failed", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
