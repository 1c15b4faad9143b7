package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestLifecycle() (*VoiceLifecycle, *fakeRecorder, *fakePlayer) {
	recorder := &fakeRecorder{audio: []byte("pcm")}
	player := &fakePlayer{}
	return NewVoiceLifecycle(recorder, player, zap.NewNop()), recorder, player
}

func TestVoiceLifecycle_StartRecordingTwiceIsNoop(t *testing.T) {
	v, recorder, _ := newTestLifecycle()
	ctx := context.Background()

	if err := v.StartRecording(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := v.StartRecording(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(recorder.captures) != 1 {
		t.Errorf("Expected 1 capture, got %d", len(recorder.captures))
	}

	audio, err := v.StopRecording()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(audio) != "pcm" {
		t.Errorf("Expected recorded audio, got %q", audio)
	}
	if recorder.captures[0].releases != 1 {
		t.Errorf("Expected device released once, got %d", recorder.captures[0].releases)
	}

	if _, err := v.StopRecording(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording, got %v", err)
	}
}

func TestVoiceLifecycle_CloseReleasesOnce(t *testing.T) {
	v, recorder, _ := newTestLifecycle()

	if err := v.StartRecording(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v.Close()
	v.Close()
	v.Close()

	capture := recorder.captures[0]
	if capture.stops != 1 {
		t.Errorf("Expected recorder stopped once, got %d", capture.stops)
	}
	if capture.releases != 1 {
		t.Errorf("Expected device released once, got %d", capture.releases)
	}
	if v.Recording() {
		t.Error("Expected recording to be inactive after close")
	}
}

func TestVoiceLifecycle_PlaySupersedes(t *testing.T) {
	v, _, player := newTestLifecycle()
	ctx := context.Background()

	firstEnded := make(chan struct{}, 1)
	if err := v.Play(ctx, bytes.NewReader([]byte("one")), func() { firstEnded <- struct{}{} }); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	first := player.last()

	if err := v.Play(ctx, bytes.NewReader([]byte("two")), nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second := player.last()

	stopped, rewound := first.wasStopped()
	if !stopped || !rewound {
		t.Errorf("Expected first playback stopped and rewound, got stopped=%v rewound=%v", stopped, rewound)
	}
	if stopped, _ := second.wasStopped(); stopped {
		t.Error("Expected second playback to keep playing")
	}
	if !v.Active() {
		t.Error("Expected a playback to be active")
	}

	select {
	case <-firstEnded:
		t.Error("Expected superseded playback not to run its continuation")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestVoiceLifecycle_PlayEndRunsContinuation(t *testing.T) {
	v, _, player := newTestLifecycle()

	ended := make(chan struct{})
	if err := v.Play(context.Background(), bytes.NewReader([]byte("audio")), func() { close(ended) }); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	player.last().finish()

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("Expected continuation after playback end")
	}
	if v.Active() {
		t.Error("Expected no active playback after end")
	}
}

func TestVoiceLifecycle_RecordingStopsPlayback(t *testing.T) {
	v, _, player := newTestLifecycle()
	ctx := context.Background()

	if err := v.Play(ctx, bytes.NewReader([]byte("audio")), nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := v.StartRecording(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if stopped, _ := player.last().wasStopped(); !stopped {
		t.Error("Expected playback to stop when recording starts")
	}
	if v.Active() && v.Recording() {
		t.Error("Expected playback and recording never to be active together")
	}
}
