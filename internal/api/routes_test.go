package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/dengun/assistant/server/adapters/avatar"
	"github.com/dengun/assistant/server/adapters/memory"
	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
	"github.com/dengun/assistant/server/internal/auth"
	"github.com/dengun/assistant/server/internal/config"
	"github.com/dengun/assistant/server/usecase"
)

type staticKnowledge struct{}

func (staticKnowledge) Load() (string, string, error) {
	return "Seja breve.", "A Dengun fica em Faro.", nil
}

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, req repositories.ChatRequest) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeTranscriber struct {
	text string
	err  error
	got  repositories.AudioInput
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio repositories.AudioInput) (string, error) {
	f.got = audio
	return f.text, f.err
}

type fakeSynthesizer struct {
	audio string
	err   error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) (*repositories.SynthesizedAudio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &repositories.SynthesizedAudio{
		ContentType: "audio/mpeg",
		Body:        io.NopCloser(strings.NewReader(f.audio)),
	}, nil
}

type fakeMailer struct {
	sent []entities.ContactNotification
	err  error
}

func (f *fakeMailer) SendContactNotification(ctx context.Context, n entities.ContactNotification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func newTestEcho(t *testing.T, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.Use(LanguageNegotiation())
	e.Use(ThemeHeader())
	InitRoutes(e, deps, zaptest.NewLogger(t))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("Expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	if got := decodeError(t, rec).Error; got != message {
		t.Errorf("Expected error %q, got %q", message, got)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEcho(t, Dependencies{})

	rec := doJSON(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" || body["service"] != "dengun-assistant" {
		t.Errorf("Unexpected health body %v", body)
	}
}

func TestChatRoute(t *testing.T) {
	completer := &fakeCompleter{reply: "A Dengun é um Startup Studio."}
	chat := usecase.NewChatService(completer, staticKnowledge{}, nil, zap.NewNop())
	e := newTestEcho(t, Dependencies{Chat: chat})

	rec := doJSON(e, http.MethodPost, "/api/chatgpt", `{"message":"O que é a Dengun?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Reply != "A Dengun é um Startup Studio." {
		t.Errorf("Unexpected reply %q", resp.Reply)
	}

	rec = doJSON(e, http.MethodPost, "/api/chatgpt", `{"message":"   "}`)
	assertError(t, rec, http.StatusBadRequest, "Message is required")
	if completer.calls != 1 {
		t.Errorf("Expected no call for an empty message, got %d calls", completer.calls)
	}
}

func TestChatRouteFailures(t *testing.T) {
	t.Run("provider not configured", func(t *testing.T) {
		chat := usecase.NewChatService(nil, staticKnowledge{}, nil, zap.NewNop())
		e := newTestEcho(t, Dependencies{Chat: chat})

		rec := doJSON(e, http.MethodPost, "/api/chatgpt", `{"message":"hi"}`)
		assertError(t, rec, http.StatusInternalServerError, "Failed to get response from ChatGPT")
	})

	t.Run("upstream error", func(t *testing.T) {
		completer := &fakeCompleter{err: errors.New("status 429: quota exceeded")}
		chat := usecase.NewChatService(completer, staticKnowledge{}, nil, zap.NewNop())
		e := newTestEcho(t, Dependencies{Chat: chat})

		rec := doJSON(e, http.MethodPost, "/api/chatgpt", `{"message":"hi"}`)
		assertError(t, rec, http.StatusInternalServerError, "Failed to get response from ChatGPT")
		if strings.Contains(rec.Body.String(), "quota") {
			t.Error("Expected upstream detail to stay on the server")
		}
	})
}

func multipartAudio(t *testing.T, field string, fields map[string]string) (*bytes.Buffer, string) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if field != "" {
		part, err := writer.CreateFormFile(field, "audio.wav")
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write([]byte("RIFF-data"))
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestTranscribeRoute(t *testing.T) {
	transcriber := &fakeTranscriber{text: "bom dia"}
	e := newTestEcho(t, Dependencies{Transcriber: transcriber, TranscribeLanguage: "pt"})

	body, contentType := multipartAudio(t, "audio", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp TranscribeResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Text != "bom dia" {
		t.Errorf("Expected 'bom dia', got %q", resp.Text)
	}
	if string(transcriber.got.Data) != "RIFF-data" {
		t.Errorf("Unexpected audio %q", transcriber.got.Data)
	}
	if transcriber.got.Language != "pt" {
		t.Errorf("Expected default language pt, got %q", transcriber.got.Language)
	}
	if transcriber.got.Filename != "audio.wav" {
		t.Errorf("Expected filename audio.wav, got %q", transcriber.got.Filename)
	}

	body, contentType = multipartAudio(t, "audio", map[string]string{"language": "en"})
	req = httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	e.ServeHTTP(httptest.NewRecorder(), req)
	if transcriber.got.Language != "en" {
		t.Errorf("Expected language override en, got %q", transcriber.got.Language)
	}
}

func TestTranscribeRouteFailures(t *testing.T) {
	t.Run("missing audio", func(t *testing.T) {
		e := newTestEcho(t, Dependencies{Transcriber: &fakeTranscriber{}})
		body, contentType := multipartAudio(t, "", map[string]string{"language": "pt"})
		req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assertError(t, rec, http.StatusBadRequest, "No audio file provided")
	})

	t.Run("provider not configured", func(t *testing.T) {
		e := newTestEcho(t, Dependencies{})
		body, contentType := multipartAudio(t, "audio", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assertError(t, rec, http.StatusInternalServerError, "Failed to transcribe audio")
	})

	t.Run("upstream error", func(t *testing.T) {
		e := newTestEcho(t, Dependencies{Transcriber: &fakeTranscriber{err: errors.New("boom")}})
		body, contentType := multipartAudio(t, "audio", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assertError(t, rec, http.StatusInternalServerError, "Failed to transcribe audio")
	})
}

func TestSpeechRoute(t *testing.T) {
	e := newTestEcho(t, Dependencies{Synthesizer: &fakeSynthesizer{audio: "ID3-bytes"}})

	rec := doJSON(e, http.MethodPost, "/api/tts", `{"text":"Olá"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %s", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd != `inline; filename="speech.mp3"` {
		t.Errorf("Unexpected Content-Disposition %s", cd)
	}
	if rec.Body.String() != "ID3-bytes" {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/api/tts", `{"text":""}`)
	assertError(t, rec, http.StatusBadRequest, "Text is required")

	failing := newTestEcho(t, Dependencies{Synthesizer: &fakeSynthesizer{err: errors.New("voice not found")}})
	rec = doJSON(failing, http.MethodPost, "/api/tts", `{"text":"Olá"}`)
	assertError(t, rec, http.StatusInternalServerError, "Failed to generate speech")

	unconfigured := newTestEcho(t, Dependencies{})
	rec = doJSON(unconfigured, http.MethodPost, "/api/tts", `{"text":"Olá"}`)
	assertError(t, rec, http.StatusInternalServerError, "Failed to generate speech")
}

func newAvatarDeps(t *testing.T, handler http.HandlerFunc) Dependencies {
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	client, err := avatar.NewClient(avatar.Config{APIKey: "tavus-key", BaseURL: upstream.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create avatar client: %v", err)
	}
	return Dependencies{Avatar: client}
}

func TestAvatarRouteCreatesConversation(t *testing.T) {
	deps := newAvatarDeps(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "tavus-key" {
			t.Errorf("Expected x-api-key header")
		}
		if r.Method != http.MethodPost || r.URL.Path != "/conversations" {
			t.Errorf("Unexpected upstream call %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["replica_id"] != "r1" {
			t.Errorf("Expected replica_id r1, got %v", body)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"conversation_id":"c1","data":{"conversation_url":"https://tavus.daily.co/c1"}}`))
	})
	e := newTestEcho(t, deps)

	rec := doJSON(e, http.MethodPost, "/api/tavus",
		`{"endpoint":"/conversations","body":{"replica_id":"r1","persona_id":"p1"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["conversation_id"] != "c1" {
		t.Errorf("Expected relayed conversation_id, got %v", body["conversation_id"])
	}
	if body["session_url"] != "https://tavus.daily.co/c1" {
		t.Errorf("Expected session_url, got %v", body["session_url"])
	}
}

func TestAvatarRouteRelaysUpstreamError(t *testing.T) {
	deps := newAvatarDeps(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Replica not found"}`))
	})
	e := newTestEcho(t, deps)

	rec := doJSON(e, http.MethodGet, "/api/tavus?endpoint=/replicas/r9", "")
	assertError(t, rec, http.StatusNotFound, "Replica not found")
}

func TestAvatarRouteGetRelaysBody(t *testing.T) {
	deps := newAvatarDeps(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/replicas" {
			t.Errorf("Unexpected upstream call %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"replica_id":"r1"}]}`))
	})
	e := newTestEcho(t, deps)

	rec := doJSON(e, http.MethodGet, "/api/tavus?endpoint=replicas", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "session_url") {
		t.Error("Expected session_url only on conversation creation")
	}
}

func TestAvatarRouteValidation(t *testing.T) {
	e := newTestEcho(t, Dependencies{})

	rec := doJSON(e, http.MethodPost, "/api/tavus", `{"endpoint":"/conversations"}`)
	assertError(t, rec, http.StatusInternalServerError, "Tavus API key not configured")

	rec = doJSON(e, http.MethodGet, "/api/tavus", "")
	assertError(t, rec, http.StatusBadRequest, "Endpoint is required")

	deps := newAvatarDeps(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no upstream call")
	})
	configured := newTestEcho(t, deps)

	rec = doJSON(configured, http.MethodPost, "/api/tavus", `{"body":{}}`)
	assertError(t, rec, http.StatusBadRequest, "Endpoint is required")

	rec = doJSON(configured, http.MethodPost, "/api/tavus", `{"endpoint":"/../admin"}`)
	assertError(t, rec, http.StatusBadRequest, "Invalid endpoint")
}

func TestAvatarRouteTransportError(t *testing.T) {
	client, err := avatar.NewClient(avatar.Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create avatar client: %v", err)
	}
	e := newTestEcho(t, Dependencies{Avatar: client})

	rec := doJSON(e, http.MethodGet, "/api/tavus?endpoint=/replicas", "")
	assertError(t, rec, http.StatusInternalServerError, "Internal server error")
	if decodeError(t, rec).Details == "" {
		t.Error("Expected details on transport failure")
	}
}

func TestWithSessionURL(t *testing.T) {
	out := withSessionURL(json.RawMessage(`{"conversation_url":"https://x/1"}`))
	if !strings.Contains(string(out), `"session_url":"https://x/1"`) {
		t.Errorf("Expected session_url in %s", out)
	}

	unchanged := json.RawMessage(`{"status":"ok"}`)
	if string(withSessionURL(unchanged)) != string(unchanged) {
		t.Error("Expected body without a join URL to be unchanged")
	}
}

func TestSendEmailRoute(t *testing.T) {
	mailer := &fakeMailer{}
	e := newTestEcho(t, Dependencies{Mailer: mailer})

	rec := doJSON(e, http.MethodPost, "/api/send-email",
		`{"email":"ana@exemplo.pt","conversation":"Usuário: olá"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp NotificationResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.Message != "Registro enviado com sucesso" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Email != "ana@exemplo.pt" {
		t.Errorf("Expected one notification, got %+v", mailer.sent)
	}

	failing := newTestEcho(t, Dependencies{Mailer: &fakeMailer{err: errors.New("smtp down")}})
	rec = doJSON(failing, http.MethodPost, "/api/send-email", `{"phone":"912345678","conversation":"x"}`)
	assertError(t, rec, http.StatusInternalServerError, "Falha ao enviar registro")

	unconfigured := newTestEcho(t, Dependencies{})
	rec = doJSON(unconfigured, http.MethodPost, "/api/send-email", `{"conversation":"x"}`)
	assertError(t, rec, http.StatusInternalServerError, "Falha ao enviar registro")
}

func TestFeedbackAndCommentRoutes(t *testing.T) {
	repo := memory.NewFeedbackRepository()
	e := newTestEcho(t, Dependencies{Feedback: repo})

	rec := doJSON(e, http.MethodPost, "/api/feedback", `{"messageId":"m1","type":"like","content":"Olá"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	saved, ok := repo.Feedback("m1")
	if !ok || saved.Kind != entities.FeedbackLike {
		t.Errorf("Expected like for m1, got %+v", saved)
	}

	rec = doJSON(e, http.MethodPost, "/api/feedback", `{"messageId":"m1","type":"love"}`)
	assertError(t, rec, http.StatusBadRequest, "Invalid feedback type")

	rec = doJSON(e, http.MethodPost, "/api/feedback", `{"type":"like"}`)
	assertError(t, rec, http.StatusBadRequest, "messageId is required")

	rec = doJSON(e, http.MethodPost, "/api/comment", `{"messageId":"m1","content":"Olá","comment":" útil "}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	comments := repo.Comments("m1")
	if len(comments) != 1 || comments[0].Comment != "útil" {
		t.Errorf("Expected trimmed comment, got %+v", comments)
	}

	rec = doJSON(e, http.MethodPost, "/api/comment", `{"messageId":"m1","comment":"  "}`)
	assertError(t, rec, http.StatusBadRequest, "Comment is required")
}

func TestSessionRoute(t *testing.T) {
	issuer, err := auth.NewIssuer("secret")
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	e := newTestEcho(t, Dependencies{Tokens: issuer})

	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp SessionResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token == "" || resp.SessionID == "" {
		t.Fatalf("Expected token and session id, got %+v", resp)
	}

	claims, err := issuer.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("Expected a valid token: %v", err)
	}
	if claims.SessionID != resp.SessionID {
		t.Errorf("Expected session %s, got %s", resp.SessionID, claims.SessionID)
	}
	if claims.Language != "fr" {
		t.Errorf("Expected negotiated language fr, got %s", claims.Language)
	}

	rec = doJSON(e, http.MethodPost, "/api/session", `{"language":"pt"}`)
	json.Unmarshal(rec.Body.Bytes(), &resp)
	claims, _ = issuer.ValidateToken(resp.Token)
	if claims == nil || claims.Language != "pt" {
		t.Errorf("Expected requested language pt, got %+v", claims)
	}

	unconfigured := newTestEcho(t, Dependencies{})
	rec = doJSON(unconfigured, http.MethodPost, "/api/session", `{}`)
	assertError(t, rec, http.StatusInternalServerError, "Failed to create session")
}

func TestPublicConfigRoute(t *testing.T) {
	e := newTestEcho(t, Dependencies{Public: config.Public{AvatarReplicaID: "r1", DatabaseURL: "https://db.example"}})

	rec := doJSON(e, http.MethodGet, "/api/config", "")
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["avatarReplicaId"] != "r1" || body["databaseUrl"] != "https://db.example" {
		t.Errorf("Unexpected config %v", body)
	}
	if _, ok := body["avatarPersonaId"]; ok {
		t.Error("Expected empty values to be omitted")
	}
}

func TestThemeHeader(t *testing.T) {
	e := newTestEcho(t, Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get("x-theme"); got != "dark" {
		t.Errorf("Expected x-theme dark, got %q", got)
	}

	rec = doJSON(e, http.MethodGet, "/health", "")
	if got := rec.Header().Get("x-theme"); got != "light" {
		t.Errorf("Expected x-theme light by default, got %q", got)
	}
}
