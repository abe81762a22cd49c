package services

import (
	"strings"

	"github.com/venturedraft/venturedraft-backend/internal/types"
)

const chatSystemPrompt = `You are a helpful business consultant AI assistant helping a user create a comprehensive business plan. Your role is to:

1. Ask questions naturally and conversationally (one or two at a time, not all at once)
2. Guide the user through all essential business plan sections:
   - Business name and description
   - Target market and customer demographics
   - Problem being solved
   - Solution/product offering
   - Revenue model and pricing
   - Customer acquisition strategy
   - Competitive landscape
   - Operations model
   - Leadership team
   - Financial projections
   - Funding needs
   - Goals and milestones

3. Be conversational and friendly - like chatting with a business advisor
4. Ask follow-up questions when answers are vague or incomplete
5. Acknowledge good answers and show enthusiasm
6. When you have gathered sufficient information across all key areas, suggest generating the business plan
7. Don't ask all questions at once - have a natural conversation flow
8. If the user provides information that covers multiple topics, acknowledge it and ask about the next missing piece

Remember: You're having a conversation, not conducting an interrogation. Make it feel natural and engaging.`

const sufficientInfoHint = "\n\nNote: You've gathered substantial information. Consider suggesting that the user is ready to generate their business plan, but continue the conversation naturally if they want to add more details."

const gatherMoreHint = "\n\nContinue asking questions to gather all necessary information for a complete business plan."

const generateSystemPrompt = `You are a senior business consultant and expert business plan writer. Your task is to generate a comprehensive, professional business plan based on the conversation history with the user.

INSTRUCTIONS:
- Write in a professional, clear, and confident tone suitable for investors and lenders.
- Use proper business plan formatting with clear section headings.
- Do NOT hallucinate financial data. Only use numbers and projections the user has provided or clearly stated assumptions.
- If information is missing in certain areas, still write a complete section but note any assumptions made.
- Use Markdown formatting with ## for major sections and ### for subsections.
- Make the plan detailed, typically 3000-5000 words.
- Extract all relevant information from the conversation history to build a complete business plan.

REQUIRED SECTIONS:
## Executive Summary
## Company Overview
## Market Analysis
## Organization & Management
## Product / Service Line
## Marketing & Sales Strategy
## Funding Request
## Financial Projections
## Goals & Milestones

Write the complete business plan now based on the conversation history provided.`

const titleSystemPrompt = `Based on the conversation history below, generate a concise, descriptive title for this business plan conversation.

Requirements:
- The title should be 3-8 words maximum
- It should capture the essence of the business being discussed
- Focus on the business name, industry, or main product/service
- Make it clear and professional
- Do NOT include quotes, punctuation marks, or special characters
- Return ONLY the title, nothing else

Conversation history:`

// hasEnoughInformation is a rough heuristic: with this many user turns the
// conversation has probably covered the ground. The assistant model makes
// the actual call; this only tunes its system instruction.
func hasEnoughInformation(transcript []*types.Message, threshold int) bool {
	userTurns := 0
	for _, m := range transcript {
		if m.Role == types.RoleUser {
			userTurns++
		}
	}
	return userTurns >= threshold
}

// renderDialogue flattens a transcript into "User:"/"Assistant:" lines for
// single-prompt model calls. System rows are not conversational turns and
// are dropped.
func renderDialogue(transcript []*types.Message) string {
	var parts []string
	for _, m := range transcript {
		switch m.Role {
		case types.RoleUser:
			parts = append(parts, "User: "+m.Content)
		case types.RoleAssistant:
			parts = append(parts, "Assistant: "+m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
