package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

// ErrNotRecording is returned by StopRecording when no capture is active
var ErrNotRecording = errors.New("not recording")

// Capture is an in-progress recording
type Capture interface {
	// Stop finalizes the buffered chunks into one audio object
	Stop() ([]byte, error)
	// Release frees the capture device
	Release()
}

// Recorder acquires the capture device
type Recorder interface {
	Start(ctx context.Context) (Capture, error)
}

// Playback is an audio stream being played
type Playback interface {
	// Done is closed when playback finishes or is stopped
	Done() <-chan struct{}
	Stop()
	Rewind()
}

// Player starts playback of encoded audio
type Player interface {
	Play(ctx context.Context, audio io.Reader) (Playback, error)
}

// VoiceLifecycle owns the capture device and the audio output. It enforces a
// single rule: starting a recording or a playback supersedes whatever audio
// operation is active, so at most one of them is active at any time.
type VoiceLifecycle struct {
	mu         sync.Mutex
	recorder   Recorder
	player     Player
	capture    Capture
	playback   Playback
	generation uint64
	logger     *zap.Logger
}

// NewVoiceLifecycle creates a lifecycle around a recorder and a player
func NewVoiceLifecycle(recorder Recorder, player Player, logger *zap.Logger) *VoiceLifecycle {
	return &VoiceLifecycle{recorder: recorder, player: player, logger: logger}
}

// StartRecording acquires the device and begins buffering. Calling it while
// already recording is a no-op. An active playback is stopped first.
func (v *VoiceLifecycle) StartRecording(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.capture != nil {
		return nil
	}
	v.stopPlaybackLocked()

	capture, err := v.recorder.Start(ctx)
	if err != nil {
		return err
	}
	v.capture = capture
	v.logger.Debug("Recording started")
	return nil
}

// StopRecording finalizes the recording and releases the device
func (v *VoiceLifecycle) StopRecording() ([]byte, error) {
	v.mu.Lock()
	capture := v.capture
	v.capture = nil
	v.mu.Unlock()

	if capture == nil {
		return nil, ErrNotRecording
	}
	defer capture.Release()

	audio, err := capture.Stop()
	if err != nil {
		return nil, err
	}
	v.logger.Debug("Recording stopped", zap.Int("audioBytes", len(audio)))
	return audio, nil
}

// Play stops and rewinds any active playback, discards an in-progress
// recording and starts audio. onEnd runs once if the playback finishes on its
// own; it does not run when the playback is superseded or closed.
func (v *VoiceLifecycle) Play(ctx context.Context, audio io.Reader, onEnd func()) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopPlaybackLocked()
	v.discardCaptureLocked()

	playback, err := v.player.Play(ctx, audio)
	if err != nil {
		return err
	}
	v.playback = playback
	v.generation++
	gen := v.generation

	go func() {
		<-playback.Done()

		v.mu.Lock()
		natural := v.generation == gen && v.playback == playback
		if natural {
			v.playback = nil
		}
		v.mu.Unlock()

		if natural && onEnd != nil {
			onEnd()
		}
	}()
	return nil
}

// Close stops playback and any recording and releases the device. It is safe
// to call any number of times.
func (v *VoiceLifecycle) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopPlaybackLocked()
	v.discardCaptureLocked()
}

// Active reports whether a playback is in progress
func (v *VoiceLifecycle) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playback != nil
}

// Recording reports whether a capture is in progress
func (v *VoiceLifecycle) Recording() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.capture != nil
}

func (v *VoiceLifecycle) stopPlaybackLocked() {
	if v.playback == nil {
		return
	}
	v.generation++
	v.playback.Stop()
	v.playback.Rewind()
	v.playback = nil
}

func (v *VoiceLifecycle) discardCaptureLocked() {
	if v.capture == nil {
		return
	}
	capture := v.capture
	v.capture = nil
	if _, err := capture.Stop(); err != nil {
		v.logger.Debug("Discarded recording failed to stop", zap.Error(err))
	}
	capture.Release()
}
