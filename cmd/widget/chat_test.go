package main

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/internal/i18n"
	"github.com/dengun/assistant/server/internal/theme"
	"github.com/dengun/assistant/server/usecase"
)

type fakeProxy struct {
	mu       sync.Mutex
	reply    string
	feedback []entities.Feedback
}

func (f *fakeProxy) Chat(ctx context.Context, message string) (string, error) {
	return f.reply, nil
}

func (f *fakeProxy) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	return string(audio), nil
}

func (f *fakeProxy) Speak(ctx context.Context, text string) ([]byte, error) {
	return []byte("mp3"), nil
}

func (f *fakeProxy) Feedback(ctx context.Context, feedback entities.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, feedback)
	return nil
}

func (f *fakeProxy) Comment(ctx context.Context, comment entities.Comment) error { return nil }

func (f *fakeProxy) Notify(ctx context.Context, notification entities.ContactNotification) error {
	return nil
}

func newTestSession(t *testing.T, p *fakeProxy) (*chatSession, *strings.Builder) {
	logger := zap.NewNop()
	recorder := &fileRecorder{}
	out := &strings.Builder{}
	conv := usecase.NewConversation(p, i18n.NewStore(i18n.English, nil, logger),
		usecase.NewVoiceLifecycle(recorder, &filePlayer{dir: t.TempDir(), out: out}, logger), logger)
	t.Cleanup(conv.Close)

	return &chatSession{
		conv:     conv,
		themes:   theme.NewStore(theme.Light, nil, logger),
		recorder: recorder,
		out:      out,
		logger:   logger,
	}, out
}

func TestChatSession_TextAndFeedback(t *testing.T) {
	p := &fakeProxy{reply: "Hello from Dengun"}
	s, out := newTestSession(t, p)
	ctx := context.Background()

	if s.handle(ctx, "What do you build?") {
		t.Fatal("Expected session to continue")
	}
	if !strings.Contains(out.String(), "[2] assistant:") || !strings.Contains(out.String(), "Hello from Dengun") {
		t.Errorf("Expected numbered reply, got %q", out.String())
	}

	s.handle(ctx, "/like 2")
	s.handle(ctx, "/like 2")
	s.conv.Close()

	if len(p.feedback) != 2 {
		t.Fatalf("Expected 2 feedback reports, got %d", len(p.feedback))
	}
	if len(s.conv.Snapshot().Feedback) != 0 {
		t.Errorf("Expected second toggle to clear, got %v", s.conv.Snapshot().Feedback)
	}
	if !strings.Contains(out.String(), "feedback cleared") {
		t.Errorf("Expected cleared notice, got %q", out.String())
	}
}

func TestChatSession_Commands(t *testing.T) {
	s, out := newTestSession(t, &fakeProxy{reply: "ok"})
	ctx := context.Background()

	s.handle(ctx, "/lang pt")
	if s.conv.Snapshot().Language != i18n.Portuguese {
		t.Errorf("Expected Portuguese, got %s", s.conv.Snapshot().Language)
	}

	s.handle(ctx, "/lang xx")
	if !strings.Contains(out.String(), `unsupported language "xx"`) {
		t.Errorf("Expected unsupported notice, got %q", out.String())
	}

	s.handle(ctx, "/theme")
	if !s.themes.Dark() {
		t.Error("Expected dark theme after toggle")
	}

	s.handle(ctx, "/like 9")
	if !strings.Contains(out.String(), "no such message") {
		t.Errorf("Expected missing message notice, got %q", out.String())
	}

	s.handle(ctx, "/bogus")
	if !strings.Contains(out.String(), "unknown command /bogus") {
		t.Errorf("Expected unknown command notice, got %q", out.String())
	}

	if !s.handle(ctx, "/quit") {
		t.Error("Expected /quit to end the session")
	}
}
