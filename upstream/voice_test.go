package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saja-boys/jinwoo-server/types"
)

func decodeVoice(t *testing.T, payload json.RawMessage) types.VoiceResult {
	t.Helper()
	var result types.VoiceResult
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("payload is not a VoiceResult: %v", err)
	}
	return result
}

func TestSynthesize_JSONPassthrough(t *testing.T) {
	upstreamBody := `{"audioUrl":"https://cdn.example.com/jinwoo.mp3","status":"success","message":"ok"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req voiceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Voice != "jinwoo" {
			t.Errorf("Expected default voice 'jinwoo', got %q", req.Voice)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer srv.Close()

	client := NewVoiceClient(srv.URL, "", "jinwoo", 5*time.Second)
	payload := client.Synthesize(context.Background(), "안녕하세요", "")

	if string(payload) != upstreamBody {
		t.Errorf("JSON body must pass through verbatim, got %s", payload)
	}
}

func TestSynthesize_AudioBecomesDataURI(t *testing.T) {
	audio := []byte{0xFF, 0xF3, 0x01, 0x02}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	client := NewVoiceClient(srv.URL, "", "jinwoo", 5*time.Second)
	result := decodeVoice(t, client.Synthesize(context.Background(), "안녕하세요", "jinwoo"))

	if result.Status != "success" {
		t.Errorf("Expected status 'success', got %q", result.Status)
	}
	if result.AudioURL == nil {
		t.Fatal("Expected audioUrl, got nil")
	}
	if !strings.HasPrefix(*result.AudioURL, "data:audio/") {
		t.Errorf("Expected data:audio/ URI, got %q", *result.AudioURL)
	}
	if !strings.Contains(*result.AudioURL, ";base64,") {
		t.Errorf("Expected base64 data URI, got %q", *result.AudioURL)
	}
}

func TestSynthesize_UnexpectedContentTypeFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>not audio</html>"))
	}))
	defer srv.Close()

	client := NewVoiceClient(srv.URL, "", "jinwoo", 5*time.Second)
	result := decodeVoice(t, client.Synthesize(context.Background(), "안녕하세요", ""))

	if result.Status != "fallback" {
		t.Errorf("Expected status 'fallback', got %q", result.Status)
	}
	if result.AudioURL != nil {
		t.Errorf("Expected absent audioUrl, got %q", *result.AudioURL)
	}
	if result.Message != VoiceFallbackMessage {
		t.Errorf("Expected localized fallback notice, got %q", result.Message)
	}
}

func TestSynthesize_TransportFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewVoiceClient(srv.URL, "", "jinwoo", 2*time.Second)
	result := decodeVoice(t, client.Synthesize(context.Background(), "안녕하세요", ""))

	if result.Status != "fallback" {
		t.Errorf("Expected status 'fallback', got %q", result.Status)
	}
}

func TestSynthesize_NoEndpointFallsBack(t *testing.T) {
	client := NewVoiceClient("", "", "jinwoo", 2*time.Second)
	result := decodeVoice(t, client.Synthesize(context.Background(), "안녕하세요", ""))

	if result.Status != "fallback" {
		t.Errorf("Expected status 'fallback', got %q", result.Status)
	}
}
