// Package upstream holds the clients for the three external services the
// server proxies: in-character reply generation, text-to-speech, and
// translation. Reply failures surface as *UpstreamError so the session
// controller can fall back to the canned bank; voice and translation never
// fail hard, they degrade to data.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saja-boys/jinwoo-server/config"
	"github.com/saja-boys/jinwoo-server/mission"
)

// ErrReplyDisabled is returned when no reply provider is configured. The
// server still runs; every turn is answered from the fallback bank.
var ErrReplyDisabled = errors.New("reply client disabled (missing endpoint or key)")

// DefaultApology is substituted when the upstream answers 2xx but carries no
// reply field. This is a soft fail inside a successful response, not an
// UpstreamError.
const DefaultApology = "죄송해요, 잠시 후 다시 말씀해 주세요."

// edgeReplyPath is the edge-function route the reply service exposes.
const edgeReplyPath = "/functions/v1/quick-worker"

// UpstreamError folds every hard failure of an external call - non-2xx
// status, timeout, DNS, refused connection - into one kind. The caller's
// only remedy is the fallback path, so finer distinctions buy nothing.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s upstream failed: status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s upstream failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Replier generates one in-character reply for a user turn.
type Replier interface {
	Reply(ctx context.Context, userMessage string, missionIndex int) (string, error)
}

// EdgeReplyClient calls a Supabase-style edge function with a persona
// preamble and a bearer credential.
type EdgeReplyClient struct {
	BaseURL string
	APIKey  string
	Persona mission.Persona
	HTTP    *http.Client
}

// NewEdgeReplyClient creates an edge reply client.
func NewEdgeReplyClient(baseURL, apiKey string, persona mission.Persona, timeout time.Duration) *EdgeReplyClient {
	return &EdgeReplyClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Persona: persona,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type edgeReplyRequest struct {
	Message          string `json:"message"`
	CharacterContext string `json:"characterContext"`
}

type edgeReplyResponse struct {
	Reply string `json:"reply"`
}

// Reply sends the user message with the persona preamble and returns the
// normalized reply text. Non-2xx status and transport failures come back as
// *UpstreamError; a 2xx body without a reply field yields DefaultApology.
func (c *EdgeReplyClient) Reply(ctx context.Context, userMessage string, missionIndex int) (string, error) {
	reqBody := edgeReplyRequest{
		Message:          userMessage,
		CharacterContext: PersonaPreamble(c.Persona, missionIndex),
	}
	b, _ := json.Marshal(reqBody)

	endpoint := c.BaseURL + edgeReplyPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", &UpstreamError{Service: "reply", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.APIKey) != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Service: "reply", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return "", &UpstreamError{Service: "reply", Status: res.StatusCode}
	}

	body, _ := io.ReadAll(res.Body)
	var out edgeReplyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &UpstreamError{Service: "reply", Err: fmt.Errorf("decode failed: %w", err)}
	}

	reply := out.Reply
	if reply == "" {
		reply = DefaultApology
	}
	return CleanReply(c.Persona.Name, reply), nil
}

// PersonaPreamble builds the character context sent with every reply request:
// identity, tone instructions, and the current stage number (1-based).
func PersonaPreamble(persona mission.Persona, missionIndex int) string {
	return fmt.Sprintf(`당신은 K-pop 아이돌 그룹 "%s"의 멤버 %s입니다.
팬미팅에서 팬과 대화하고 있습니다. 친근하고 다정하게 한국어로 대답해주세요.
현재 미션: %d번째 대화
항상 한국어로만 대답하고, 친근하고 따뜻한 톤으로 말해주세요.`, persona.Group, persona.Name, missionIndex+1)
}

// NewReplierFromEnv builds the configured reply provider: "edge" (default)
// for the bearer-authenticated edge function, "googleai" for direct Gemini
// generation via langchaingo. Returns ErrReplyDisabled when the provider's
// required settings are absent.
func NewReplierFromEnv(ctx context.Context, cfg *config.EnvConfig, persona mission.Persona) (Replier, error) {
	switch cfg.ReplyProvider {
	case "", "edge":
		if cfg.ReplyBaseURL == "" {
			return nil, ErrReplyDisabled
		}
		return NewEdgeReplyClient(cfg.ReplyBaseURL, cfg.ReplyAPIKey, persona, cfg.ReplyTimeout), nil
	case "googleai":
		if cfg.GoogleAPIKey == "" {
			return nil, ErrReplyDisabled
		}
		return NewGoogleReplyClient(ctx, cfg.GoogleAPIKey, cfg.GoogleModel, persona)
	default:
		return nil, fmt.Errorf("unsupported reply provider: %s (supported: edge, googleai)", cfg.ReplyProvider)
	}
}
