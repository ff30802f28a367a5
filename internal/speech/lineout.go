package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/potsbox/exchange/internal/audio"
)

// LineOut renders spoken replies into the per-call output file the telephony
// layer plays back. Successive utterances within one turn are appended: the
// first chunk is written as a full WAV, later chunks contribute raw PCM only.
type LineOut struct {
	dir   string
	synth Synthesizer
}

func NewLineOut(dir string, synth Synthesizer) *LineOut {
	return &LineOut{dir: dir, synth: synth}
}

func (l *LineOut) outPath(callID string) string {
	return filepath.Join(l.dir, callID+".out.wav")
}

// Speak synthesizes text in the given voice and appends it to the call's
// output file.
func (l *LineOut) Speak(ctx context.Context, callID, voiceID, text string) error {
	wav, err := l.synth.Synthesize(ctx, text, voiceID)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if len(wav) == 0 {
		return fmt.Errorf("synthesizer returned no audio")
	}
	return l.appendChunk(callID, wav)
}

// PlayRecording appends a pre-recorded WAV file (intercept recordings) to
// the call's output.
func (l *LineOut) PlayRecording(_ context.Context, callID, path string) error {
	wav, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read recording: %w", err)
	}
	return l.appendChunk(callID, wav)
}

func (l *LineOut) appendChunk(callID string, wav []byte) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}

	path := l.outPath(callID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.WriteFile(path, wav, 0o644)
	}

	pcm, _, err := audio.PCMData(wav)
	if err != nil {
		return fmt.Errorf("parse synthesized wav: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	// The header of the first chunk keeps its original data-size field; the
	// playback side streams to end of file regardless.
	if _, err := f.Write(pcm); err != nil {
		return err
	}
	return nil
}

// PurgeCall removes the transient artifacts left by a call.
func (l *LineOut) PurgeCall(callID string) {
	for _, suffix := range []string{".out.wav", ".out.ulaw", ".ctx.txt", "_in.wav", "_in.ulaw"} {
		_ = os.Remove(filepath.Join(l.dir, callID+suffix))
	}
}

// InputPath returns where the telephony layer drops the caller's recording.
func (l *LineOut) InputPath(callID string) string {
	return filepath.Join(l.dir, callID+"_in.wav")
}

// StartJanitor removes stale audio artifacts on an interval, so abandoned
// calls do not accumulate files.
func (l *LineOut) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep(maxAge)
			}
		}
	}()
}

func (l *LineOut) sweep(maxAge time.Duration) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return
	}
	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			_ = os.Remove(filepath.Join(l.dir, entry.Name()))
		}
	}
}
