package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/services"
)

type ExportHandler struct {
	log           *logger.Logger
	exportService services.ExportService
}

func NewExportHandler(log *logger.Logger, exportService services.ExportService) *ExportHandler {
	return &ExportHandler{
		log:           log.With("handler", "ExportHandler"),
		exportService: exportService,
	}
}

func (eh *ExportHandler) ExportHTML(c *gin.Context) {
	userID, err := requestIdentity(c)
	if err != nil {
		RespondError(c, eh.log, err)
		return
	}
	planID, err := parsePlanID(c)
	if err != nil {
		RespondError(c, eh.log, err)
		return
	}
	doc, title, err := eh.exportService.ExportHTML(c.Request.Context(), userID, planID)
	if err != nil {
		RespondError(c, eh.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(title)))
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

// exportFilename flattens a plan title into a download name safe for a
// Content-Disposition header.
func exportFilename(title string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "business-plan"
	}
	return name + ".html"
}
