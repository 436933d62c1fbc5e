package main

import (
	"database/sql"

	"launch-line/internal/admin"
	"launch-line/internal/auth"
	"launch-line/internal/callflow"
	"launch-line/internal/config"
	"launch-line/internal/schedule"
	"launch-line/internal/status"
	"launch-line/internal/telephony"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type deps struct {
	cfg config.Config
	db  *sql.DB
	rdb *redis.Client

	auth        *auth.Manager
	flow        *callflow.Flow
	windowStore schedule.Store
	wizard      *schedule.Wizard
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic; handlers delegate to internal
// modules. The voice paths must match callflow.PathLinks.
func registerRoutes(r *gin.Engine, d deps) {
	st := status.Handlers{
		Resolver: schedule.NewResolver(d.windowStore),
		DB:       d.db,
		Cache:    d.rdb,
	}
	r.GET("/healthz", st.Heartbeat)
	r.GET("/web.json", st.WebStatus)

	// Prerecorded audio referenced from TwiML.
	r.Static("/static", "./static")

	// Voice webhooks. Signature validation is enforced here when a
	// Twilio auth token is configured.
	voice := telephony.VoiceHandlers{
		Flow:          d.flow,
		AuthToken:     d.cfg.Twilio.AuthToken,
		PublicBaseURL: d.cfg.App.PublicBaseURL,
	}
	call := r.Group("/call")
	call.Use(voice.RequireSignature())
	{
		call.POST("/start", voice.CallStart)
		call.POST("/gathered", voice.Gathered)
		call.POST("/gather_failed", voice.GatherFailed)
		call.POST("/human/:seed/:index", voice.HumanStep)
		call.POST("/human/:seed/:index/pickup", voice.HumanPickup)
		call.POST("/human/:seed/:index/end", voice.HumanEnded)
		call.POST("/forward/pickup", voice.ForwardPickup)
		call.POST("/forward/ended", voice.ForwardEnded)
		call.POST("/status_callback", voice.StatusCallback)
	}
	r.POST("/sms", voice.RequireSignature(), voice.SMS)

	// Admin API (token-protected).
	adm := admin.Handlers{Auth: d.auth, Store: d.windowStore, Wizard: d.wizard}
	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", adm.Login)

		windows := v1.Group("/windows")
		windows.Use(auth.RequireAccessToken(d.auth))
		{
			windows.GET("", adm.ListWindows)
			windows.POST("", st.Invalidate, adm.UpsertWindow)
			windows.POST("/launch", st.Invalidate, adm.ScheduleLaunch)
		}
	}
}
