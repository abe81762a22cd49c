package services

import (
	"strings"
	"testing"

	"github.com/venturedraft/venturedraft-backend/internal/types"
)

func msg(role types.Role, content string) *types.Message {
	return &types.Message{Role: role, Content: content}
}

func TestHasEnoughInformation_CountsOnlyUserTurns(t *testing.T) {
	transcript := []*types.Message{
		msg(types.RoleUser, "a"),
		msg(types.RoleAssistant, "b"),
		msg(types.RoleUser, "c"),
		msg(types.RoleSystem, "d"),
	}
	if hasEnoughInformation(transcript, 3) {
		t.Fatalf("expected 2 user turns to fall short of threshold 3")
	}
	if !hasEnoughInformation(transcript, 2) {
		t.Fatalf("expected 2 user turns to meet threshold 2")
	}
}

func TestHasEnoughInformation_EmptyTranscript(t *testing.T) {
	if hasEnoughInformation(nil, 1) {
		t.Fatalf("expected empty transcript to never be enough")
	}
}

func TestRenderDialogue_DropsSystemRows(t *testing.T) {
	transcript := []*types.Message{
		msg(types.RoleUser, "I want to open a bakery"),
		msg(types.RoleSystem, "internal note"),
		msg(types.RoleAssistant, "Tell me about your customers"),
	}
	got := renderDialogue(transcript)
	want := "User: I want to open a bakery\n\nAssistant: Tell me about your customers"
	if got != want {
		t.Fatalf("unexpected dialogue:\n%q\nwant:\n%q", got, want)
	}
	if strings.Contains(got, "internal note") {
		t.Fatalf("system row leaked into dialogue")
	}
}

func TestRenderDialogue_Empty(t *testing.T) {
	if got := renderDialogue(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestGenerateSystemPrompt_ListsRequiredSections(t *testing.T) {
	required := []string{
		"## Executive Summary",
		"## Company Overview",
		"## Market Analysis",
		"## Organization & Management",
		"## Product / Service Line",
		"## Marketing & Sales Strategy",
		"## Funding Request",
		"## Financial Projections",
		"## Goals & Milestones",
	}
	for _, section := range required {
		if !strings.Contains(generateSystemPrompt, section) {
			t.Fatalf("generation prompt missing section %q", section)
		}
	}
}
