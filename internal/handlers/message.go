package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/services"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

type MessageHandler struct {
	log            *logger.Logger
	messageService services.MessageService
}

func NewMessageHandler(log *logger.Logger, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{
		log:            log.With("handler", "MessageHandler"),
		messageService: messageService,
	}
}

func (mh *MessageHandler) List(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, mh.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, mh.log, err)
		return
	}
	msgs, err := mh.messageService.List(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, mh.log, err)
		return
	}
	RespondOK(c, gin.H{"messages": msgs})
}

func (mh *MessageHandler) Append(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, mh.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, mh.log, err)
		return
	}
	var req struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, mh.log, apierr.Validation("invalid request body"))
		return
	}
	msg, err := mh.messageService.Append(c.Request.Context(), userID, planID, types.Role(req.Role), req.Content)
	if err != nil {
		RespondError(c, mh.log, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}
