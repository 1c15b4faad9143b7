package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/dengun/assistant/server/domain/entities"
)

type fakeProxy struct {
	mu sync.Mutex

	chatReply  string
	chatErr    error
	chatBlock  chan struct{}
	transcript string
	sttErr     error
	audio      []byte
	ttsErr     error

	chatCalls     []string
	sttCalls      int
	speakCalls    []string
	feedbacks     []entities.Feedback
	comments      []entities.Comment
	notifications []entities.ContactNotification
	sideErr       error
}

func (p *fakeProxy) Chat(ctx context.Context, message string) (string, error) {
	p.mu.Lock()
	p.chatCalls = append(p.chatCalls, message)
	block := p.chatBlock
	p.mu.Unlock()
	if block != nil {
		<-block
	}
	return p.chatReply, p.chatErr
}

func (p *fakeProxy) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sttCalls++
	return p.transcript, p.sttErr
}

func (p *fakeProxy) Speak(ctx context.Context, text string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speakCalls = append(p.speakCalls, text)
	return p.audio, p.ttsErr
}

func (p *fakeProxy) Feedback(ctx context.Context, feedback entities.Feedback) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feedbacks = append(p.feedbacks, feedback)
	return p.sideErr
}

func (p *fakeProxy) Comment(ctx context.Context, comment entities.Comment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comments = append(p.comments, comment)
	return p.sideErr
}

func (p *fakeProxy) Notify(ctx context.Context, notification entities.ContactNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, notification)
	return p.sideErr
}

func (p *fakeProxy) chatCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.chatCalls)
}

type fakeCapture struct {
	mu       sync.Mutex
	audio    []byte
	stops    int
	releases int
}

func (c *fakeCapture) Stop() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	return c.audio, nil
}

func (c *fakeCapture) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases++
}

type fakeRecorder struct {
	mu       sync.Mutex
	captures []*fakeCapture
	audio    []byte
	err      error
}

func (r *fakeRecorder) Start(ctx context.Context) (Capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c := &fakeCapture{audio: r.audio}
	r.captures = append(r.captures, c)
	return c, nil
}

type fakePlayback struct {
	mu       sync.Mutex
	done     chan struct{}
	once     sync.Once
	stopped  bool
	rewound  bool
	received []byte
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }

func (p *fakePlayback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.finish()
}

func (p *fakePlayback) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rewound = true
}

func (p *fakePlayback) finish() {
	p.once.Do(func() { close(p.done) })
}

func (p *fakePlayback) wasStopped() (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped, p.rewound
}

type fakePlayer struct {
	mu        sync.Mutex
	playbacks []*fakePlayback
	err       error
}

func (p *fakePlayer) Play(ctx context.Context, audio io.Reader) (Playback, error) {
	if p.err != nil {
		return nil, p.err
	}
	data, _ := io.ReadAll(audio)
	pb := &fakePlayback{done: make(chan struct{}), received: data}
	p.mu.Lock()
	p.playbacks = append(p.playbacks, pb)
	p.mu.Unlock()
	return pb, nil
}

func (p *fakePlayer) last() *fakePlayback {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playbacks) == 0 {
		return nil
	}
	return p.playbacks[len(p.playbacks)-1]
}

type fakeAvatarRequester struct {
	mu        sync.Mutex
	responses []func(ctx context.Context) (json.RawMessage, error)
	calls     int
}

func (f *fakeAvatarRequester) Avatar(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	if i >= len(f.responses) {
		return nil, errors.New("unexpected call")
	}
	return f.responses[i](ctx)
}
