// Package analysis implements the upstream message analyzer the engine
// consumes. The engine itself never calls back into this package; it only
// receives the structured result by value.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"github.com/easeaico/emotion-engine/internal/types"
)

const analyzerInstruction = `You analyze one user message sent to a roleplay character.
Return ONLY a JSON object matching this shape, no other text:
{
  "urgency": 0.0,
  "emotional_analysis": {
    "user_mood": "string",
    "expected_emotional_response": "comma-separated emotion labels",
    "emotional_intensity": 0.0,
    "trigger_emotions": ["string"]
  }
}
urgency and emotional_intensity are between 0 and 1.
expected_emotional_response lists the emotions the character should feel, strongest first.`

// Analyzer classifies messages into the structured analysis the engine's
// message pathway consumes.
type Analyzer struct {
	model model.LLM
}

// NewAnalyzer builds a gemini-backed analyzer.
func NewAnalyzer(ctx context.Context, modelName, apiKey string) (*Analyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	m, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer model: %w", err)
	}
	return &Analyzer{model: m}, nil
}

// NewAnalyzerWithModel wraps an existing LLM; used by tests.
func NewAnalyzerWithModel(m model.LLM) *Analyzer {
	return &Analyzer{model: m}
}

// Analyze returns the structured analysis for a message. Malformed model
// output degrades to neutral defaults rather than an error so a flaky model
// never breaks the update pathway.
func (a *Analyzer) Analyze(ctx context.Context, text string) (types.MessageAnalysis, error) {
	if a == nil || a.model == nil {
		return neutralAnalysis(), fmt.Errorf("analyzer not configured")
	}
	if strings.TrimSpace(text) == "" {
		return neutralAnalysis(), nil
	}

	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText(analyzerInstruction, "system"),
			genai.NewContentFromText(text, "user"),
		},
	}

	seq := a.model.GenerateContent(ctx, req, false)
	var resp *model.LLMResponse
	var err error
	seq(func(r *model.LLMResponse, e error) bool {
		resp = r
		err = e
		return false
	})
	if err != nil {
		return neutralAnalysis(), err
	}

	return parseAnalysisJSON(extractText(resp)), nil
}

// parseAnalysisJSON decodes the model output, clamping every numeric field
// and substituting defaults for whatever is missing.
func parseAnalysisJSON(raw string) types.MessageAnalysis {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return neutralAnalysis()
	}
	clean = clean[start : end+1]

	var analysis types.MessageAnalysis
	if err := json.Unmarshal([]byte(clean), &analysis); err != nil {
		return neutralAnalysis()
	}

	analysis.Urgency = types.Clamp01(analysis.Urgency)
	analysis.EmotionalAnalysis.EmotionalIntensity = types.Clamp01(analysis.EmotionalAnalysis.EmotionalIntensity)
	if strings.TrimSpace(analysis.EmotionalAnalysis.ExpectedEmotionalResponse) == "" {
		analysis.EmotionalAnalysis.ExpectedEmotionalResponse = types.EmotionNeutral
	}
	return analysis
}

func neutralAnalysis() types.MessageAnalysis {
	return types.MessageAnalysis{
		EmotionalAnalysis: types.EmotionalAnalysis{
			UserMood:                  types.EmotionNeutral,
			ExpectedEmotionalResponse: types.EmotionNeutral,
		},
	}
}

func extractText(resp *model.LLMResponse) string {
	if resp == nil || resp.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
