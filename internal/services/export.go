package services

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/repos"
)

// ExportService renders a plan's generated Markdown into a self-contained
// HTML document suitable for printing or saving.
type ExportService interface {
	ExportHTML(ctx context.Context, userID, planID uuid.UUID) ([]byte, string, error)
}

type exportService struct {
	db       *gorm.DB
	log      *logger.Logger
	planRepo repos.PlanRepo
	md       goldmark.Markdown
}

func NewExportService(db *gorm.DB, baseLog *logger.Logger, planRepo repos.PlanRepo) ExportService {
	return &exportService{
		db:       db,
		log:      baseLog.With("service", "ExportService"),
		planRepo: planRepo,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

const exportStyle = `body{font-family:Georgia,serif;max-width:48rem;margin:2rem auto;padding:0 1rem;line-height:1.6;color:#1a1a1a}
h1{font-size:2rem;border-bottom:2px solid #1a1a1a;padding-bottom:.5rem}
h2{font-size:1.4rem;margin-top:2rem}
h3{font-size:1.1rem}
@media print{body{margin:0;max-width:none}}`

// ExportHTML returns the document bytes and the plan title. A plan with no
// generated text has nothing to export yet; that reads as not-found.
func (es *exportService) ExportHTML(ctx context.Context, userID, planID uuid.UUID) ([]byte, string, error) {
	plan, err := es.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check plan ownership: %w", err)
	}
	if plan == nil {
		return nil, "", apierr.NotFound("plan")
	}
	if plan.GeneratedPlanText == nil || *plan.GeneratedPlanText == "" {
		return nil, "", apierr.NotFound("generated plan")
	}

	var body bytes.Buffer
	if err := es.md.Convert([]byte(*plan.GeneratedPlanText), &body); err != nil {
		return nil, "", fmt.Errorf("failed to render plan markdown: %w", err)
	}

	var doc bytes.Buffer
	title := html.EscapeString(plan.Title)
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	doc.WriteString(title)
	doc.WriteString("</title>\n<style>")
	doc.WriteString(exportStyle)
	doc.WriteString("</style>\n</head>\n<body>\n<h1>")
	doc.WriteString(title)
	doc.WriteString("</h1>\n")
	doc.Write(body.Bytes())
	doc.WriteString("\n</body>\n</html>\n")

	return doc.Bytes(), plan.Title, nil
}
