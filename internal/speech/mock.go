package speech

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/potsbox/exchange/internal/audio"
)

// MockProvider is a deterministic local provider for tests and keyless runs.
// Synthesis emits a short silent WAV; transcription replays scripted lines.
type MockProvider struct {
	mu          sync.Mutex
	transcripts []string
	Spoken      []string
}

func NewMockProvider(transcripts ...string) *MockProvider {
	return &MockProvider{transcripts: transcripts}
}

func (p *MockProvider) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	p.mu.Lock()
	p.Spoken = append(p.Spoken, text)
	p.mu.Unlock()

	// 100ms of silence at 16kHz.
	return audio.EncodeWAVPCM16LE(make([]byte, 3200), 16000)
}

func (p *MockProvider) Transcribe(_ context.Context, audio io.Reader) (string, error) {
	if audio != nil {
		_, _ = io.Copy(io.Discard, audio)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.transcripts) == 0 {
		return "", nil
	}
	next := p.transcripts[0]
	p.transcripts = p.transcripts[1:]
	return strings.TrimSpace(next), nil
}
