package speech

import (
	"context"
	"fmt"
	"io"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// GoogleProvider synthesizes speech through Google Cloud Text-to-Speech.
// It is synthesis-only; pair it with another Transcriber.
type GoogleProvider struct {
	client       *texttospeech.Client
	languageCode string
	sampleRateHz int
}

func NewGoogleProvider(ctx context.Context, languageCode string, sampleRateHz int) (*GoogleProvider, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("google tts client: %w", err)
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	if sampleRateHz <= 0 {
		sampleRateHz = 24000
	}
	return &GoogleProvider{client: client, languageCode: languageCode, sampleRateHz: sampleRateHz}, nil
}

func (p *GoogleProvider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: p.languageCode,
			Name:         voiceID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			// LINEAR16 responses arrive with a WAV header, matching the
			// container every other synthesizer here returns.
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: int32(p.sampleRateHz),
		},
	}

	resp, err := p.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("google synthesize: %w", err)
	}
	return resp.AudioContent, nil
}

// Transcribe is not supported by this provider.
func (p *GoogleProvider) Transcribe(context.Context, io.Reader) (string, error) {
	return "", fmt.Errorf("google provider does not transcribe")
}

func (p *GoogleProvider) Close() error { return p.client.Close() }
