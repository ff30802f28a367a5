package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider implements both speech directions over the OpenAI audio
// endpoints.
type OpenAIProvider struct {
	apiKey   string
	baseURL  string
	ttsModel string
	sttModel string
	client   *http.Client
}

type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	TTSModel string
	STTModel string
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	ttsModel := cfg.TTSModel
	if ttsModel == "" {
		ttsModel = "gpt-4o-mini-tts"
	}
	sttModel := cfg.STTModel
	if sttModel == "" {
		sttModel = "gpt-4o-mini-transcribe"
	}
	return &OpenAIProvider{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		ttsModel: ttsModel,
		sttModel: sttModel,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"model":  p.ttsModel,
		"voice":  voiceID,
		"input":  text,
		"format": "wav",
	})
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

var nulReplacer = strings.NewReplacer("\x00", "")

func (p *OpenAIProvider) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "input.wav")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.WriteField("model", p.sttModel); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("stt status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode stt response: %w", err)
	}
	return CleanTranscript(decoded.Text), nil
}

// CleanTranscript strips characters that confuse downstream prompt handling,
// keeping word characters, whitespace, and basic punctuation.
func CleanTranscript(text string) string {
	var sb strings.Builder
	for _, r := range nulReplacer.Replace(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			sb.WriteRune(' ')
		case r == ',' || r == '.' || r == '!' || r == '?' || r == '-' || r == '\'':
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
