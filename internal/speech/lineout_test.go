package speech

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/potsbox/exchange/internal/audio"
)

func TestLineOutAppendsChunks(t *testing.T) {
	dir := t.TempDir()
	mock := NewMockProvider()
	line := NewLineOut(dir, mock)

	ctx := context.Background()
	if err := line.Speak(ctx, "call-1", "nova", "first"); err != nil {
		t.Fatalf("first speak: %v", err)
	}
	first, err := os.ReadFile(line.outPath("call-1"))
	if err != nil {
		t.Fatalf("read after first chunk: %v", err)
	}
	pcm1, rate, err := audio.PCMData(first)
	if err != nil {
		t.Fatalf("parse first chunk: %v", err)
	}
	if rate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", rate)
	}

	if err := line.Speak(ctx, "call-1", "nova", "second"); err != nil {
		t.Fatalf("second speak: %v", err)
	}
	combined, err := os.ReadFile(line.outPath("call-1"))
	if err != nil {
		t.Fatalf("read after second chunk: %v", err)
	}
	if want := len(first) + len(pcm1); len(combined) != want {
		t.Fatalf("combined size = %d, want %d (header-stripped append)", len(combined), want)
	}
	if got := mock.Spoken; len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("spoken log = %v", got)
	}
}

func TestLineOutPurgeCall(t *testing.T) {
	dir := t.TempDir()
	line := NewLineOut(dir, NewMockProvider())

	if err := line.Speak(context.Background(), "call-2", "ash", "hello"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	inPath := line.InputPath("call-2")
	if err := os.WriteFile(inPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	line.PurgeCall("call-2")
	if _, err := os.Stat(line.outPath("call-2")); !os.IsNotExist(err) {
		t.Fatalf("output file survived purge")
	}
	if _, err := os.Stat(inPath); !os.IsNotExist(err) {
		t.Fatalf("input file survived purge")
	}
}

func TestLineOutPlayRecording(t *testing.T) {
	dir := t.TempDir()
	mock := NewMockProvider()
	line := NewLineOut(dir, mock)

	rec := filepath.Join(dir, "busy.wav")
	wav, err := mock.Synthesize(context.Background(), "recording", "ash")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if err := os.WriteFile(rec, wav, 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	if err := line.PlayRecording(context.Background(), "call-3", rec); err != nil {
		t.Fatalf("play recording: %v", err)
	}
	if _, err := os.Stat(line.outPath("call-3")); err != nil {
		t.Fatalf("output missing after recording: %v", err)
	}
}

func TestLineOutSweepRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	line := NewLineOut(dir, NewMockProvider())

	stale := filepath.Join(dir, "old.out.wav")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatalf("write stale: %v", err)
	}
	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	fresh := filepath.Join(dir, "new.out.wav")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fresh: %v", err)
	}

	line.sweep(time.Minute)
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale file survived sweep")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file removed by sweep: %v", err)
	}
}
