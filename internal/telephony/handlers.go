package telephony

import (
	"errors"
	"net/http"
	"strconv"

	"launch-line/internal/callflow"
	"launch-line/internal/schedule"
	"launch-line/pkg/logger"

	"github.com/gin-gonic/gin"
)

// VoiceHandlers converts Twilio voice webhooks to flow invocations and
// writes the resulting TwiML. No flow logic lives here: each handler
// parses the boundary, rebuilds the CallContext from the callback's
// addressing parameters and delegates.
type VoiceHandlers struct {
	Flow *callflow.Flow

	// AuthToken enables X-Twilio-Signature validation when set. Leave
	// empty only for local development.
	AuthToken string

	// PublicBaseURL is the externally visible scheme+host the provider
	// signed against, e.g. "https://line.example.org".
	PublicBaseURL string
}

// RequireSignature rejects requests whose X-Twilio-Signature does not
// verify. Webhook authenticity is settled here, before any flow code.
func (h VoiceHandlers) RequireSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.AuthToken == "" {
			c.Next()
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
			return
		}
		fullURL := h.PublicBaseURL + c.Request.URL.RequestURI()
		sig := c.GetHeader("X-Twilio-Signature")
		if !ValidateSignature(h.AuthToken, fullURL, c.Request.PostForm, sig) {
			logger.FromGin(c).Warn("twilio signature rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "bad signature"})
			return
		}
		c.Next()
	}
}

func (h VoiceHandlers) form(c *gin.Context) (VoiceForm, bool) {
	f, err := ParseVoiceForm(c.Request)
	if err != nil {
		logger.FromGin(c).Warn("voice webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return VoiceForm{}, false
	}
	return f, true
}

func (h VoiceHandlers) respond(c *gin.Context, verbs []callflow.Verb, err error) {
	log := logger.FromGin(c)
	if err != nil {
		if errors.Is(err, schedule.ErrIntegrity) {
			log.Error("window integrity fault", "err", err)
		} else {
			log.Error("call flow failed", "err", err)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call flow failed"})
		return
	}

	twiml, err := RenderTwiML(verbs)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}

// CallStart handles the inbound call event.
func (h VoiceHandlers) CallStart(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	verbs, err := h.Flow.Start(c.Request.Context(), callflow.CallContext{SID: f.SID()}, f.From, f.To)
	h.respond(c, verbs, err)
}

// Gathered handles the options-menu keypress.
func (h VoiceHandlers) Gathered(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	verbs, err := h.Flow.Gathered(c.Request.Context(), callflow.CallContext{SID: f.SID()}, f.Digits, f.To)
	h.respond(c, verbs, err)
}

// GatherFailed handles the menu timeout.
func (h VoiceHandlers) GatherFailed(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	verbs, err := h.Flow.GatherFailed(c.Request.Context(), callflow.CallContext{SID: f.SID()})
	h.respond(c, verbs, err)
}

func (h VoiceHandlers) escalationContext(c *gin.Context, f VoiceForm) (callflow.CallContext, bool) {
	seed, err := strconv.ParseInt(c.Param("seed"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid seed"})
		return callflow.CallContext{}, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return callflow.CallContext{}, false
	}
	return callflow.CallContext{SID: f.SID(), Seed: seed, Index: index}, true
}

// HumanStep dials the escalation attempt addressed by the URL.
func (h VoiceHandlers) HumanStep(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	cc, ok := h.escalationContext(c, f)
	if !ok {
		return
	}
	verbs, err := h.Flow.HumanStep(c.Request.Context(), cc, f.To)
	h.respond(c, verbs, err)
}

// HumanPickup runs on the dialed human before bridging.
func (h VoiceHandlers) HumanPickup(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	cc, ok := h.escalationContext(c, f)
	if !ok {
		return
	}
	verbs, err := h.Flow.HumanPickup(c.Request.Context(), cc)
	h.respond(c, verbs, err)
}

// HumanEnded handles the dial completion for one escalation attempt.
func (h VoiceHandlers) HumanEnded(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	cc, ok := h.escalationContext(c, f)
	if !ok {
		return
	}
	verbs, err := h.Flow.HumanEnded(c.Request.Context(), cc, f.DialCallStatus, f.To)
	h.respond(c, verbs, err)
}

// ForwardPickup runs on the direct-forward target before bridging.
func (h VoiceHandlers) ForwardPickup(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	verbs, err := h.Flow.ForwardPickup(c.Request.Context(), callflow.CallContext{SID: f.SID()})
	h.respond(c, verbs, err)
}

// ForwardEnded handles the direct-forward dial completion.
func (h VoiceHandlers) ForwardEnded(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	verbs, err := h.Flow.ForwardEnded(c.Request.Context(), callflow.CallContext{SID: f.SID()}, f.DialCallStatus)
	h.respond(c, verbs, err)
}

// StatusCallback handles the end-of-call event and triggers the summary
// notification.
func (h VoiceHandlers) StatusCallback(c *gin.Context) {
	f, ok := h.form(c)
	if !ok {
		return
	}
	// The number lands in an email subject header; reject anything that
	// is not a plain E.164 number.
	if !ValidPhone(f.From) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid caller number"})
		return
	}
	if err := h.Flow.Ended(c.Request.Context(), callflow.CallContext{SID: f.SID()}, f.From, f.CallDuration, f.CallStatus); err != nil {
		logger.FromGin(c).Error("status callback failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "status callback failed"})
		return
	}
	c.String(http.StatusOK, "OK")
}

// SMS logs an inbound SMS and answers with an empty response; the line
// has no SMS features.
func (h VoiceHandlers) SMS(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	logger.FromGin(c).Info("inbound sms",
		"from", c.Request.PostFormValue("From"),
		"body", c.Request.PostFormValue("Body"))

	twiml, err := RenderTwiML(nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}
