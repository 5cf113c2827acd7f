package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saja-boys/jinwoo-server/types"
)

// VoiceFallbackMessage is the localized notice served when synthesis is
// unavailable; the frontend switches to browser speech synthesis on it.
const VoiceFallbackMessage = "진우 음성을 생성할 수 없어 기본 음성으로 대체됩니다."

// VoiceClient calls the text-to-speech upstream. The upstream is known to
// answer either with structured JSON (already carrying a URL) or with a raw
// audio stream; Synthesize folds both into one JSON payload and never
// surfaces a hard failure.
type VoiceClient struct {
	URL          string
	APIKey       string
	DefaultVoice string
	HTTP         *http.Client
}

// NewVoiceClient creates a voice client.
func NewVoiceClient(url, apiKey, defaultVoice string, timeout time.Duration) *VoiceClient {
	return &VoiceClient{
		URL:          url,
		APIKey:       apiKey,
		DefaultVoice: defaultVoice,
		HTTP:         &http.Client{Timeout: timeout},
	}
}

type voiceRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Synthesize returns the JSON payload to serve for a synthesis request:
// an upstream JSON body verbatim, a data-URI VoiceResult for raw audio
// bodies, or the fallback VoiceResult for every failure.
func (c *VoiceClient) Synthesize(ctx context.Context, text, voice string) json.RawMessage {
	if voice == "" {
		voice = c.DefaultVoice
	}

	if c.URL == "" {
		return fallbackVoicePayload()
	}

	reqBody, _ := json.Marshal(voiceRequest{Text: text, Voice: voice})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(reqBody))
	if err != nil {
		return fallbackVoicePayload()
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.APIKey) != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fallbackVoicePayload()
	}
	defer res.Body.Close()

	contentType := res.Header.Get("Content-Type")

	switch {
	case strings.Contains(contentType, "application/json"):
		body, err := io.ReadAll(res.Body)
		if err != nil || !json.Valid(body) {
			return fallbackVoicePayload()
		}
		return body

	case strings.Contains(contentType, "audio/"):
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return fallbackVoicePayload()
		}
		audioURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
		payload, _ := json.Marshal(types.VoiceResult{
			AudioURL: &audioURL,
			Status:   "success",
			Message:  "Audio generated successfully",
		})
		return payload

	default:
		return fallbackVoicePayload()
	}
}

func fallbackVoicePayload() json.RawMessage {
	payload, _ := json.Marshal(types.VoiceResult{
		AudioURL: nil,
		Status:   "fallback",
		Message:  VoiceFallbackMessage,
	})
	return payload
}
