package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mvp-foundry/internal/model"
)

var ErrEmptyCompletion = errors.New("llm returned no blueprint content")

// Completer is the slice of the chat client the generator needs.
type Completer interface {
	Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error)
}

// BlueprintGenerator turns a startup idea into a DocumentPayload with a
// single chat completion. It does not retry.
type BlueprintGenerator struct {
	client Completer
	cfg    ChatConfig
}

func NewBlueprintGenerator(client Completer, cfg ChatConfig) *BlueprintGenerator {
	cfg.JSONMode = true
	return &BlueprintGenerator{client: client, cfg: cfg}
}

func (g *BlueprintGenerator) Generate(ctx context.Context, prompt string) (model.DocumentPayload, error) {
	messages := []ChatMessage{
		{Role: "system", Content: SystemInstruction},
		{Role: "user", Content: strings.TrimSpace(prompt)},
	}

	content, err := g.client.Complete(ctx, g.cfg, messages)
	if err != nil {
		return model.DocumentPayload{}, err
	}
	return DecodePayload(content)
}

// DecodePayload extracts the JSON object from a completion. Models often
// wrap it in a ```json fence or add a sentence around it.
func DecodePayload(content string) (model.DocumentPayload, error) {
	body := extractJSONObject(content)
	if body == "" {
		return model.DocumentPayload{}, ErrEmptyCompletion
	}

	var payload model.DocumentPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return model.DocumentPayload{}, fmt.Errorf("decode blueprint json failed: %w", err)
	}
	return payload, nil
}

func extractJSONObject(content string) string {
	s := strings.TrimSpace(content)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return strings.TrimSpace(s)
	}
	return s[start : end+1]
}

const SystemInstruction = `You are a senior software architect, product manager and startup mentor.
Turn the user's raw startup idea into a complete, production-ready MVP suite.

Respond ONLY with a valid JSON object of this shape:
{
  "title": "A catchy, professional startup name",
  "blueprint": {
    "problemStatement": "Markdown analysis of the market gap and user pain points.",
    "targetUsers": "2-3 personas with pain points, goals and tech-savviness.",
    "coreFeatures": "3-5 essential features with complexity (Low/Med/High) and user value.",
    "userFlow": "Step-by-step happy path from onboarding to success.",
    "systemArchitecture": "Frontend, backend, database and AI components.",
    "databaseSchema": "Markdown table of tables, fields and relationships.",
    "apiDesign": "Markdown table of REST endpoints with methods and purpose.",
    "geminiIntegration": "Role and business value of AI in the application.",
    "techStack": "Definitive list of tools.",
    "securityPrivacy": "Data protection, encryption and safe AI usage.",
    "timeline": "Markdown summary of the 14-day sprint.",
    "futureScaling": "3-4 growth ideas after initial validation."
  },
  "roadmap": {
    "milestones": [{"name": "Spec & Design", "start": 1, "end": 2, "description": "..."}],
    "resourceAllocation": [{"name": "Engineering", "description": "...", "value": 40}],
    "priorityQuadrants": {
      "quickWins": [{"name": "Feature", "reason": "High impact, low effort"}],
      "strategicBets": [{"name": "Feature", "reason": "High impact, high effort"}],
      "maintenance": [{"name": "Feature", "reason": "Necessary, low user impact"}],
      "distractions": [{"name": "Feature", "reason": "Low impact, high effort"}]
    }
  },
  "competitors": {
    "analysis": "Markdown summary of the market landscape.",
    "list": [{"name": "", "strength": "", "weakness": "", "marketPosition": "", "price": "", "differentiator": ""}],
    "comparisonMetrics": [{"metric": "Ease of Use", "ourProduct": "", "competitorA": "", "competitorB": ""}],
    "differentiators": "3 strategic tips formatted as a markdown numbered list."
  },
  "caseStudies": [
    {"name": "", "founders": "", "revenue": "", "logoUrl": "https://logo.clearbit.com/DOMAIN.com", "problem": "", "approach": "", "outcome": ""}
  ]
}

Rules:
- Markdown fields may use "## " and "### " headings, "1. " numbered lists, "- " bullets, pipe tables with a "---" separator row, and **bold**. Nothing else.
- Differentiators MUST be numbered tips.
- Case studies MUST be real companies.
- Milestones cover days 1 to 14.
- No charts or graphics.`
