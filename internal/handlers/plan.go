package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/ctxutil"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/services"
)

type PlanHandler struct {
	log         *logger.Logger
	planService services.PlanService
}

func NewPlanHandler(log *logger.Logger, planService services.PlanService) *PlanHandler {
	return &PlanHandler{
		log:         log.With("handler", "PlanHandler"),
		planService: planService,
	}
}

// requestIdentity pulls the authenticated user out of the request context.
// Handlers behind RequireAuth always have one; a missing identity means the
// route was wired without the middleware.
func requestIdentity(c *gin.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthenticated()
	}
	return rd.UserID, nil
}

func parsePlanID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.Validation("invalid plan id")
	}
	return id, nil
}

func (ph *PlanHandler) List(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	plans, err := ph.planService.List(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"plans": plans})
}

func (ph *PlanHandler) Create(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	// An empty body is fine; the title defaults server-side.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, ph.log, apierr.Validation("invalid request body"))
			return
		}
	}
	plan, err := ph.planService.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

func (ph *PlanHandler) Get(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	plan, err := ph.planService.Get(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"plan": plan})
}

func (ph *PlanHandler) Update(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	var req struct {
		Title             *string         `json:"title"`
		StructuredAnswers json.RawMessage `json:"structured_answers"`
		CurrentStep       *int            `json:"current_step"`
		GeneratedPlanText *string         `json:"generated_plan_text"`
		Status            *string         `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ph.log, apierr.Validation("invalid request body"))
		return
	}
	plan, err := ph.planService.Update(c.Request.Context(), userID, planID, services.PlanUpdate{
		Title:             req.Title,
		StructuredAnswers: req.StructuredAnswers,
		CurrentStep:       req.CurrentStep,
		GeneratedPlanText: req.GeneratedPlanText,
		Status:            req.Status,
	})
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"plan": plan})
}

func (ph *PlanHandler) Delete(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	if err := ph.planService.Delete(c.Request.Context(), userID, planID); err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
