package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saja-boys/jinwoo-server/config"
	"github.com/saja-boys/jinwoo-server/mission"
	"github.com/saja-boys/jinwoo-server/session"
	"github.com/saja-boys/jinwoo-server/types"
	"github.com/saja-boys/jinwoo-server/upstream"
)

type scriptedReplier struct {
	reply string
	err   error
}

func (f *scriptedReplier) Reply(ctx context.Context, msg string, missionIndex int) (string, error) {
	return f.reply, f.err
}

func testCurriculum() *mission.Curriculum {
	return &mission.Curriculum{
		Persona: mission.Persona{Name: "진우", Group: "사자 보이즈"},
		Stages: []mission.Stage{
			{Prompt: "진우에게 인사해보세요", Keywords: []string{"안녕"}, Fallbacks: []string{"반가워요!"}},
			{Prompt: "자기소개를 해보세요", Keywords: []string{"저는"}, Fallbacks: []string{"멋진 이름이네요!"}},
		},
	}
}

func newTestHandler(t *testing.T, replier upstream.Replier, voiceURL, translateURL string) http.Handler {
	t.Helper()

	curriculum := testCurriculum()
	bank := mission.NewFallbackBank(curriculum, rand.New(rand.NewSource(1)))
	controller := session.NewController(curriculum, bank, replier)

	cfg := &config.EnvConfig{Port: 0}
	voice := upstream.NewVoiceClient(voiceURL, "", "jinwoo", time.Second)
	translator := upstream.NewTranslationClient(translateURL, time.Second)

	srv := New(cfg, curriculum, controller, voice, translator)
	return srv.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChat_EndToEnd(t *testing.T) {
	handler := newTestHandler(t, &scriptedReplier{reply: "네, 안녕하세요!"}, "", "")

	rec := doJSON(t, handler, http.MethodPost, "/api/chat", `{"message":"안녕하세요!","currentMission":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out types.TurnOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !out.MissionCompleted || out.NextMission != 1 {
		t.Errorf("Expected completed=true next=1, got %v/%d", out.MissionCompleted, out.NextMission)
	}
	if out.Response != "네, 안녕하세요!" {
		t.Errorf("Expected upstream reply, got %q", out.Response)
	}
	if out.Suggestions == nil {
		t.Error("Expected suggestions to serialize as [], not null")
	}
}

func TestChat_UpstreamFailureStillAnswers200(t *testing.T) {
	replier := &scriptedReplier{err: &upstream.UpstreamError{Service: "reply", Status: 502}}
	handler := newTestHandler(t, replier, "", "")

	rec := doJSON(t, handler, http.MethodPost, "/api/chat", `{"message":"안녕하세요!","currentMission":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 despite upstream failure, got %d", rec.Code)
	}

	var out types.TurnOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.Response != "반가워요!" {
		t.Errorf("Expected the stage-0 fallback variant, got %q", out.Response)
	}
	if !out.MissionCompleted || out.NextMission != 1 {
		t.Errorf("Expected progression despite fallback, got %v/%d", out.MissionCompleted, out.NextMission)
	}
}

func TestChat_Validation(t *testing.T) {
	handler := newTestHandler(t, &scriptedReplier{reply: "ok"}, "", "")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing message", `{"currentMission":0}`, "Message is required"},
		{"empty message", `{"message":"","currentMission":0}`, "Message is required"},
		{"non-string message", `{"message":5,"currentMission":0}`, "Message is required"},
		{"missing mission", `{"message":"안녕"}`, "Current mission is required"},
		{"non-number mission", `{"message":"안녕","currentMission":"x"}`, "Current mission is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/chat", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rec.Code)
			}
			var out types.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if out.Error != tt.wantErr {
				t.Errorf("Expected error %q, got %q", tt.wantErr, out.Error)
			}
		})
	}
}

func TestVoice_FallbackWithoutEndpoint(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodPost, "/api/jinu-voice", `{"text":"안녕하세요"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var out types.VoiceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.AudioURL != nil || out.Status != "fallback" {
		t.Errorf("Expected fallback result, got %#v", out)
	}
	if out.Message != upstream.VoiceFallbackMessage {
		t.Errorf("Expected localized fallback notice, got %q", out.Message)
	}
}

func TestVoice_JSONPassthrough(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"audioUrl":"https://cdn.example.com/a.mp3","status":"success"}`))
	}))
	defer upstreamSrv.Close()

	handler := newTestHandler(t, nil, upstreamSrv.URL, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/jinu-voice", `{"text":"안녕하세요"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"audioUrl":"https://cdn.example.com/a.mp3"`) {
		t.Errorf("Expected upstream JSON body passed through, got %s", rec.Body.String())
	}
}

func TestVoice_MissingText(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodPost, "/api/jinu-voice", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Text is required") {
		t.Errorf("Expected text validation message, got %s", rec.Body.String())
	}
}

func TestTranslate_SoftAndHardFail(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData":{"translatedText":"Hello"}}`))
	}))
	defer okSrv.Close()

	handler := newTestHandler(t, nil, "", okSrv.URL)
	rec := doJSON(t, handler, http.MethodPost, "/api/translate", `{"text":"안녕","isKorean":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var out types.TranslationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.TranslatedText != "Hello" || out.SourceLang != "ko" || out.TargetLang != "en" {
		t.Errorf("Unexpected translation result: %#v", out)
	}

	downSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer downSrv.Close()

	handler = newTestHandler(t, nil, "", downSrv.URL)
	rec = doJSON(t, handler, http.MethodPost, "/api/translate", `{"text":"hello","isKorean":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on upstream failure, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.Error != "Translation service failed" {
		t.Errorf("Expected error marker, got %#v", out)
	}
	if out.TranslatedText != "[번역 서비스를 사용할 수 없습니다]" {
		t.Errorf("Expected Korean placeholder for an English source, got %q", out.TranslatedText)
	}
}

func TestMissions_ReturnsOrderedPrompts(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodGet, "/api/missions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var prompts []string
	if err := json.Unmarshal(rec.Body.Bytes(), &prompts); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	want := []string{"진우에게 인사해보세요", "자기소개를 해보세요"}
	if len(prompts) != len(want) {
		t.Fatalf("Expected %d prompts, got %d", len(want), len(prompts))
	}
	for i := range want {
		if prompts[i] != want[i] {
			t.Errorf("Prompt %d: expected %q, got %q", i, want[i], prompts[i])
		}
	}
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var out types.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out.Status != "OK" || out.Message != "AI Jinwoo Server is running!" {
		t.Errorf("Unexpected health payload: %#v", out)
	}
}

func TestExpressions(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodGet, "/api/expressions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var out types.ExpressionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(out.Core) != 5 {
		t.Errorf("Expected 5 core expressions, got %d", len(out.Core))
	}
	if out.Saved == nil || len(out.Saved) != 0 {
		t.Errorf("Expected empty non-nil saved list, got %#v", out.Saved)
	}
}

func TestCORSAndPreflight(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodGet, "/api/health", "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Unexpected allowed methods: %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("Unexpected allowed headers: %q", got)
	}

	rec = doJSON(t, handler, http.MethodOptions, "/api/chat", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty preflight body, got %q", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodGet, "/api/chat", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Method not allowed") {
		t.Errorf("Unexpected 405 body: %s", rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/missions", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST on a GET route, got %d", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "API endpoint not found") {
		t.Errorf("Unexpected 404 body: %s", rec.Body.String())
	}
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	curriculum := testCurriculum()
	bank := mission.NewFallbackBank(curriculum, rand.New(rand.NewSource(1)))
	controller := session.NewController(curriculum, bank, nil)
	srv := New(&config.EnvConfig{Port: 0}, curriculum, controller,
		upstream.NewVoiceClient("", "", "jinwoo", time.Second),
		upstream.NewTranslationClient("", time.Second))

	mux := http.NewServeMux()
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})
	handler := srv.recoveryMiddleware(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("Unexpected 500 body: %s", rec.Body.String())
	}
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	handler := newTestHandler(t, nil, "", "")

	rec := doJSON(t, handler, http.MethodGet, "/api/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("Expected the caller's request id echoed, got %q", got)
	}
}
