package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/potsbox/exchange/internal/brain"
	"github.com/potsbox/exchange/internal/call"
	"github.com/potsbox/exchange/internal/capability"
	"github.com/potsbox/exchange/internal/catalog"
	"github.com/potsbox/exchange/internal/config"
	"github.com/potsbox/exchange/internal/convlog"
	"github.com/potsbox/exchange/internal/dispatch"
	"github.com/potsbox/exchange/internal/httpapi"
	"github.com/potsbox/exchange/internal/intent"
	"github.com/potsbox/exchange/internal/observability"
	"github.com/potsbox/exchange/internal/pbx"
	"github.com/potsbox/exchange/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	turnLog, err := convlog.NewStore(ctx, cfg.DatabaseURL, cfg.CallLogPath)
	if err != nil {
		log.Fatalf("call log init failed: %v", err)
	}
	defer turnLog.Close()

	primary, err := brain.NewAdapter(brain.Config{
		Mode:    cfg.BrainMode,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.BrainModel,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}
	adapter := brain.NewFallbackAdapter(primary, brain.NewMockAdapter())

	provider := pickSpeechProvider(ctx, cfg)
	if c, ok := provider.(interface{ Close() error }); ok {
		defer c.Close()
	}

	caps, err := capability.DefaultRegistry(&http.Client{Timeout: 10 * time.Second})
	if err != nil {
		log.Fatalf("capability registry init failed: %v", err)
	}

	services, err := catalog.Default()
	if err != nil {
		log.Fatalf("service catalog init failed: %v", err)
	}
	if err := services.Validate(caps); err != nil {
		log.Fatalf("service catalog invalid: %v", err)
	}

	line := speech.NewLineOut(cfg.SoundsDir, provider)
	calls := call.NewManager(cfg.CallInactivityTTL)

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	var ari *pbx.Client
	if cfg.ARIBaseURL != "" {
		ari = pbx.NewClient(cfg.ARIBaseURL, cfg.ARIUsername, cfg.ARIPassword, cfg.ARIApp, nil)
	}

	calls.SetExpireHook(func(s *call.Session) {
		metrics.CallEvents.WithLabelValues("expired").Inc()
		metrics.ActiveCalls.Set(float64(calls.ActiveCount()))
		line.PurgeCall(s.ID)
		if err := turnLog.Purge(context.Background(), s.ID); err != nil {
			log.Printf("purge expired call %s: %v", s.ID, err)
		}
		if ari != nil {
			// The caller went quiet but may still be off hook; drop the
			// channel so the PBX frees the line.
			if err := ari.HangupExtension(context.Background(), s.Extension); err != nil {
				log.Printf("hang up expired call on %s: %v", s.Extension, err)
			}
		}
	})
	calls.StartJanitor(runCtx, 5*time.Second)
	line.StartJanitor(runCtx, 30*time.Second, cfg.SoundMaxAge)

	dispatcher := dispatch.New(dispatch.Deps{
		Calls:      calls,
		Services:   services,
		Log:        turnLog,
		Brain:      adapter,
		Intents:    intent.NewClassifier(adapter),
		Caps:       caps,
		Line:       line,
		STT:        provider,
		Intercepts: dispatch.NewInterceptController(cfg.InterceptChance, cfg.InterceptCooldown, dispatch.DefaultInterceptGroups()),
		Metrics:    metrics,
		SoundsDir:  cfg.RecordingsDir,
		City:       cfg.DefaultCity,
		Location:   cfg.Location(),
		Window:     cfg.ContextWindow,
		Confidence: cfg.IntentConfidence,
	})

	if ari != nil {
		go watchPBX(runCtx, ari, dispatcher, calls, cfg.DefaultCity)
	}

	api := httpapi.New(cfg, dispatcher, services, calls, turnLog, line)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("exchange listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

// pickSpeechProvider resolves the configured speech backend. "auto" uses
// OpenAI when a key is present and the silent mock otherwise; "google" pairs
// Google synthesis with OpenAI transcription.
func pickSpeechProvider(ctx context.Context, cfg config.Config) speech.Provider {
	mode := strings.ToLower(strings.TrimSpace(cfg.SpeechProvider))
	if mode == "" {
		mode = "auto"
	}

	openaiProvider := func() *speech.OpenAIProvider {
		return speech.NewOpenAIProvider(speech.OpenAIConfig{
			APIKey:   cfg.OpenAIAPIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			TTSModel: cfg.TTSModel,
			STTModel: cfg.STTModel,
		})
	}

	switch mode {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			log.Fatalf("SPEECH_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		log.Printf("speech provider: openai")
		return openaiProvider()
	case "google":
		g, err := speech.NewGoogleProvider(ctx, cfg.GoogleVoiceLanguage, cfg.SpeechSampleRateHz)
		if err != nil {
			log.Fatalf("google speech provider init failed: %v", err)
		}
		var stt speech.Transcriber = speech.NewMockProvider()
		if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			stt = openaiProvider()
		}
		log.Printf("speech provider: google synthesis")
		return speech.NewSplitProvider(stt, g)
	case "mock":
		log.Printf("speech provider: mock")
		return speech.NewMockProvider()
	case "auto":
		if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			log.Printf("speech provider: openai")
			return openaiProvider()
		}
		log.Printf("speech provider: mock (no OpenAI key)")
		return speech.NewMockProvider()
	default:
		log.Fatalf("invalid SPEECH_PROVIDER: %q (expected auto|openai|google|mock)", cfg.SpeechProvider)
		return nil
	}
}

// watchPBX mirrors PBX call lifecycle into the dispatcher: StasisStart opens
// a call for the dialed extension, StasisEnd releases it.
func watchPBX(ctx context.Context, ari *pbx.Client, dispatcher *dispatch.Dispatcher, calls *call.Manager, city string) {
	err := ari.Listen(ctx, func(ev pbx.Event) {
		switch ev.Type {
		case "StasisStart":
			if ev.Channel == nil || ev.Channel.Dialplan.Exten == "" {
				return
			}
			if _, err := dispatcher.StartCall(ctx, ev.Channel.Dialplan.Exten, city); err != nil {
				log.Printf("pbx start %s: %v", ev.Channel.Dialplan.Exten, err)
			}
		case "StasisEnd":
			if ev.Channel == nil || ev.Channel.Dialplan.Exten == "" {
				return
			}
			if _, err := calls.End(ev.Channel.Dialplan.Exten); err != nil && !errors.Is(err, call.ErrNotFound) {
				log.Printf("pbx end %s: %v", ev.Channel.Dialplan.Exten, err)
			}
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("pbx listener stopped: %v", err)
	}
}
