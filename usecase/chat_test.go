package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/dengun/assistant/server/adapters/memory"
	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

type staticKnowledge struct {
	err error
}

func (k staticKnowledge) Load() (string, string, error) {
	return "Tom amigável.", "A Dengun fica em Faro.", k.err
}

type recordingCompleter struct {
	requests []repositories.ChatRequest
	reply    string
	err      error
}

func (c *recordingCompleter) Complete(ctx context.Context, req repositories.ChatRequest) (string, error) {
	c.requests = append(c.requests, req)
	return c.reply, c.err
}

type stubTranscriber struct{ text string }

func (s stubTranscriber) Transcribe(ctx context.Context, audio repositories.AudioInput) (string, error) {
	return s.text, nil
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(ctx context.Context, text string) (*repositories.SynthesizedAudio, error) {
	return &repositories.SynthesizedAudio{ContentType: "audio/mpeg", Body: io.NopCloser(strings.NewReader(text))}, nil
}

func TestChatService_Reply(t *testing.T) {
	completer := &recordingCompleter{reply: "Somos de Faro."}
	service := NewChatService(completer, staticKnowledge{}, nil, zaptest.NewLogger(t))

	reply, err := service.Reply(context.Background(), "Onde ficam?")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reply != "Somos de Faro." {
		t.Errorf("Unexpected reply %q", reply)
	}

	req := completer.requests[0]
	if !strings.Contains(req.SystemPrompt, "[BASE DE CONHECIMENTO]\nA Dengun fica em Faro.") {
		t.Errorf("Expected knowledge in system prompt, got %q", req.SystemPrompt)
	}
	if !strings.Contains(req.SystemPrompt, "[INSTRUÇÕES]\nTom amigável.") {
		t.Errorf("Expected instructions in system prompt, got %q", req.SystemPrompt)
	}
	if len(req.History) != 0 {
		t.Errorf("Expected no history, got %d", len(req.History))
	}
}

func TestChatService_Errors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	unconfigured := NewChatService(nil, staticKnowledge{}, nil, logger)
	if unconfigured.Configured() {
		t.Error("Expected service without completer to be unconfigured")
	}
	if _, err := unconfigured.Reply(ctx, "hi"); !errors.Is(err, ErrProviderNotConfigured) {
		t.Errorf("Expected ErrProviderNotConfigured, got %v", err)
	}

	completer := &recordingCompleter{reply: "x"}
	missingDocs := NewChatService(completer, staticKnowledge{err: errors.New("not found")}, nil, logger)
	if _, err := missingDocs.Reply(ctx, "hi"); err == nil {
		t.Error("Expected error when knowledge is missing")
	}
	if len(completer.requests) != 0 {
		t.Error("Expected no provider call when knowledge is missing")
	}

	service := NewChatService(completer, staticKnowledge{}, nil, logger)
	if _, err := service.Reply(ctx, "  "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestChatService_ReplyInSessionKeepsHistory(t *testing.T) {
	completer := &recordingCompleter{reply: "resposta"}
	history := memory.NewHistoryStore()
	service := NewChatService(completer, staticKnowledge{}, history, zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := service.ReplyInSession(ctx, "s1", "primeira"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := service.ReplyInSession(ctx, "s1", "segunda"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second := completer.requests[1]
	if len(second.History) != 2 {
		t.Fatalf("Expected 2 history messages, got %d", len(second.History))
	}
	if second.History[0].Content != "primeira" || second.History[1].Author != entities.AuthorAssistant {
		t.Errorf("Unexpected history %+v", second.History)
	}
}

func TestVoiceTurnService(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	chat := NewChatService(&recordingCompleter{reply: "Olá!"}, staticKnowledge{}, memory.NewHistoryStore(), logger)
	service := NewVoiceTurnService(stubTranscriber{text: "olá"}, chat, stubSynthesizer{}, logger)

	text, err := service.Transcribe(ctx, repositories.AudioInput{Data: []byte("pcm")})
	if err != nil || text != "olá" {
		t.Fatalf("Unexpected transcription %q (%v)", text, err)
	}
	reply, err := service.Respond(ctx, "s1", text)
	if err != nil || reply != "Olá!" {
		t.Fatalf("Unexpected reply %q (%v)", reply, err)
	}
	audio, err := service.Speak(ctx, reply)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer audio.Body.Close()

	empty := NewVoiceTurnService(nil, nil, nil, logger)
	if _, err := empty.Transcribe(ctx, repositories.AudioInput{}); !errors.Is(err, ErrProviderNotConfigured) {
		t.Errorf("Expected ErrProviderNotConfigured, got %v", err)
	}
	if _, err := empty.Speak(ctx, "x"); !errors.Is(err, ErrProviderNotConfigured) {
		t.Errorf("Expected ErrProviderNotConfigured, got %v", err)
	}
}
