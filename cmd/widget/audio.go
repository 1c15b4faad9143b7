package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dengun/assistant/server/usecase"
)

// fileRecorder stands in for a microphone: each capture returns the contents
// of the file selected before recording started.
type fileRecorder struct {
	mu   sync.Mutex
	next string
}

func (r *fileRecorder) use(path string) {
	r.mu.Lock()
	r.next = path
	r.mu.Unlock()
}

func (r *fileRecorder) Start(ctx context.Context) (usecase.Capture, error) {
	r.mu.Lock()
	path := r.next
	r.mu.Unlock()

	if path == "" {
		return nil, fmt.Errorf("no audio file selected")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	return &fileCapture{path: path}, nil
}

type fileCapture struct {
	path     string
	released atomic.Bool
}

func (c *fileCapture) Stop() ([]byte, error) {
	return os.ReadFile(c.path)
}

func (c *fileCapture) Release() {
	c.released.Store(true)
}

// filePlayer writes each reply to the output directory instead of a speaker
type filePlayer struct {
	dir   string
	count atomic.Int64
	out   io.Writer
}

func (p *filePlayer) Play(ctx context.Context, audio io.Reader) (usecase.Playback, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := filepath.Join(p.dir, fmt.Sprintf("reply-%03d.mp3", p.count.Add(1)))
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, audio); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}
	fmt.Fprintf(p.out, "♪ %s\n", name)

	pb := &savedPlayback{done: make(chan struct{})}
	pb.Stop()
	return pb, nil
}

// savedPlayback finishes as soon as the audio is on disk
type savedPlayback struct {
	done chan struct{}
	once sync.Once
}

func (p *savedPlayback) Done() <-chan struct{} { return p.done }

func (p *savedPlayback) Stop() { p.once.Do(func() { close(p.done) }) }

func (p *savedPlayback) Rewind() {}
