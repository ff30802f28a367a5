// Package speech holds the speech-to-text and text-to-speech boundary. The
// dispatcher treats both as opaque functions; provider wiring lives here.
package speech

import (
	"context"
	"io"
)

// Transcriber turns recorded caller audio into text. An empty string means
// silence or unintelligible input, which the dispatcher treats as a
// re-prompt, never an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Synthesizer renders spoken text as WAV audio in the given voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Provider bundles both directions of one speech backend.
type Provider interface {
	Transcriber
	Synthesizer
}

// SplitProvider pairs a transcriber and a synthesizer from different
// backends, for setups where one vendor only covers one direction.
type SplitProvider struct {
	Transcriber
	Synthesizer
}

func NewSplitProvider(stt Transcriber, tts Synthesizer) *SplitProvider {
	return &SplitProvider{Transcriber: stt, Synthesizer: tts}
}

// Close releases whichever halves hold resources.
func (p *SplitProvider) Close() error {
	var firstErr error
	for _, half := range []any{p.Transcriber, p.Synthesizer} {
		if c, ok := half.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
