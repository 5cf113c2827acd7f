package upstream

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/saja-boys/jinwoo-server/mission"
)

// GoogleReplyClient generates replies directly with Gemini instead of going
// through the edge function. The persona preamble and normalization are the
// same as the edge provider, so callers cannot tell the providers apart.
type GoogleReplyClient struct {
	model   llms.Model
	persona mission.Persona
}

// NewGoogleReplyClient initializes the Gemini model.
func NewGoogleReplyClient(ctx context.Context, apiKey, model string, persona mission.Persona) (*GoogleReplyClient, error) {
	llm, err := googleai.New(
		ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini model: %w", err)
	}
	return &GoogleReplyClient{model: llm, persona: persona}, nil
}

// Reply generates one in-character reply. Generation errors fold into
// *UpstreamError like any other reply failure.
func (c *GoogleReplyClient) Reply(ctx context.Context, userMessage string, missionIndex int) (string, error) {
	prompt := PersonaPreamble(c.persona, missionIndex) + "\n\n팬: " + userMessage

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", &UpstreamError{Service: "reply", Err: err}
	}

	if strings.TrimSpace(out) == "" {
		return DefaultApology, nil
	}
	return CleanReply(c.persona.Name, out), nil
}
