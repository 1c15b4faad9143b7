package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileRecorder(t *testing.T) {
	recorder := &fileRecorder{}
	if _, err := recorder.Start(context.Background()); err == nil {
		t.Error("Expected error without a selected file")
	}

	path := filepath.Join(t.TempDir(), "hello.webm")
	if err := os.WriteFile(path, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	recorder.use(path)

	capture, err := recorder.Start(context.Background())
	if err != nil {
		t.Fatalf("Failed to start capture: %v", err)
	}
	data, err := capture.Stop()
	if err != nil {
		t.Fatalf("Failed to stop capture: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("Expected file contents, got %q", data)
	}
	capture.Release()
	capture.Release()

	recorder.use(filepath.Join(t.TempDir(), "missing.webm"))
	if _, err := recorder.Start(context.Background()); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestFilePlayer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var out strings.Builder
	player := &filePlayer{dir: dir, out: &out}

	for _, audio := range []string{"first", "second"} {
		pb, err := player.Play(context.Background(), strings.NewReader(audio))
		if err != nil {
			t.Fatalf("Failed to play: %v", err)
		}
		select {
		case <-pb.Done():
		default:
			t.Error("Expected playback to be done once written")
		}
		pb.Stop()
		pb.Rewind()
	}

	f, err := os.Open(filepath.Join(dir, "reply-002.mp3"))
	if err != nil {
		t.Fatalf("Expected second reply on disk: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "second" {
		t.Errorf("Expected 'second', got %q", data)
	}
	if !strings.Contains(out.String(), "reply-001.mp3") {
		t.Errorf("Expected output to name the file, got %q", out.String())
	}
}
