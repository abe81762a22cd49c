package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/services"
)

// ChatHandler serves the streaming model endpoints. Chat and Generate write
// chunked text/plain: errors caught before the first delta still go out as a
// normal JSON error, but once streaming has started the only failure signal
// left is closing the connection early.
type ChatHandler struct {
	log          *logger.Logger
	conversation services.ConversationService
	generator    services.GeneratorService
	titler       services.TitlerService
}

func NewChatHandler(
	log *logger.Logger,
	conversation services.ConversationService,
	generator services.GeneratorService,
	titler services.TitlerService,
) *ChatHandler {
	return &ChatHandler{
		log:          log.With("handler", "ChatHandler"),
		conversation: conversation,
		generator:    generator,
		titler:       titler,
	}
}

// severStream closes the underlying connection without the terminal chunk,
// so a truncated stream reads as a failure on the client, never as a clean
// end. Only callable once bytes have been written.
func severStream(c *gin.Context, log *logger.Logger) {
	c.Abort()
	conn, _, err := c.Writer.Hijack()
	if err != nil {
		log.Warn("Failed to sever broken stream", "error", err)
		return
	}
	_ = conn.Close()
}

// streamSink returns an onDelta callback writing chunks straight to the
// response, plus a pointer reporting whether anything was written yet.
func streamSink(c *gin.Context) (func(string), *bool) {
	started := false
	return func(delta string) {
		if delta == "" {
			return
		}
		if !started {
			started = true
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
		}
		if _, err := c.Writer.WriteString(delta); err != nil {
			return
		}
		c.Writer.Flush()
	}, &started
}

func (ch *ChatHandler) Chat(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ch.log, apierr.Validation("invalid request body"))
		return
	}

	sink, started := streamSink(c)
	err = ch.conversation.Chat(c.Request.Context(), userID, planID, req.Message, sink)
	if err != nil {
		if *started {
			// Headers are gone; cutting the connection is the only failure
			// signal left.
			ch.log.Warn("Chat stream aborted mid-flight", "plan_id", planID.String(), "error", err)
			severStream(c, ch.log)
			return
		}
		RespondError(c, ch.log, err)
	}
}

func (ch *ChatHandler) Generate(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	var req struct {
		Instructions string `json:"instructions"`
	}
	// The body is optional; absent means a first generation.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, ch.log, apierr.Validation("invalid request body"))
			return
		}
	}

	sink, started := streamSink(c)
	err = ch.generator.Generate(c.Request.Context(), userID, planID, req.Instructions, sink)
	if err != nil {
		if *started {
			ch.log.Warn("Generate stream aborted mid-flight", "plan_id", planID.String(), "error", err)
			severStream(c, ch.log)
			return
		}
		RespondError(c, ch.log, err)
	}
}

func (ch *ChatHandler) Title(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	title, err := ch.titler.SummarizeTitle(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, ch.log, err)
		return
	}
	RespondOK(c, gin.H{"title": title})
}
