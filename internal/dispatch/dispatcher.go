// Package dispatch is the exchange's switchboard: it owns the call state
// machine, routing each caller turn to a service handler, an intent switch,
// or the operator chat fallback.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/potsbox/exchange/internal/brain"
	"github.com/potsbox/exchange/internal/call"
	"github.com/potsbox/exchange/internal/capability"
	"github.com/potsbox/exchange/internal/catalog"
	"github.com/potsbox/exchange/internal/convlog"
	"github.com/potsbox/exchange/internal/intent"
	"github.com/potsbox/exchange/internal/observability"
	"github.com/potsbox/exchange/internal/speech"
	"github.com/potsbox/exchange/internal/tokens"
)

// Line is the spoken side of a call: synthesized replies and pre-recorded
// announcements, plus cleanup of a call's audio artifacts.
type Line interface {
	Speak(ctx context.Context, callID, voiceID, text string) error
	PlayRecording(ctx context.Context, callID, path string) error
	PurgeCall(callID string)
}

const (
	ModeLoop = "loop"
	ModeOnce = "once"
)

// Verdict is the dispatcher's answer to the telephony layer: whether the
// call keeps listening for another turn or hangs up after playback.
type Verdict struct {
	Mode       string `json:"mode"`
	Terminated bool   `json:"terminated"`
}

// hangupRE matches a caller who wants out. Hang-up intent outranks every
// other interpretation of the turn.
var hangupRE = regexp.MustCompile(`(?i)\b(bye|goodbye|hang ?up|get off|gotta go|have to go|see you)\b`)

// goodbyeRE matches an assistant reply that signs off, which ends the call
// on the same turn it is spoken.
var goodbyeRE = regexp.MustCompile(`(?i)\b(good-?bye|bye[- ]?bye|bye now)\b`)

var replyPrefixRE = regexp.MustCompile(`(?i)^(operator|assistant)\s*:\s*`)

const (
	stillThereLine  = "Are you still there?"
	hangupLine      = "Alright. Goodbye."
	unavailableLine = "We're sorry. That service is temporarily unavailable. Please try your call again later."
	apologyLine     = "We're sorry. Your call cannot be completed at this time. Please try again later."

	operatorChatPrompt = "You are a 1970s telephone operator. Calm, efficient, polite. Keep replies to one or two short spoken sentences. If the caller wants a service you cannot provide yourself, suggest dialing directory assistance at 411."
)

var operatorChatSampling = catalog.Sampling{Temperature: 0.7, MaxTokens: 120}

type Deps struct {
	Calls      *call.Manager
	Services   *catalog.Catalog
	Log        convlog.Store
	Brain      brain.Adapter
	Intents    *intent.Classifier
	Caps       *capability.Registry
	Line       Line
	STT        speech.Transcriber
	Intercepts *InterceptController
	Metrics    *observability.Metrics
	SoundsDir  string
	City       string
	Location   *time.Location
	Window     int
	Confidence float64
}

type Dispatcher struct {
	calls      *call.Manager
	services   *catalog.Catalog
	log        convlog.Store
	brain      brain.Adapter
	intents    *intent.Classifier
	caps       *capability.Registry
	line       Line
	stt        speech.Transcriber
	intercepts *InterceptController
	metrics    *observability.Metrics
	soundsDir  string

	city       string
	loc        *time.Location
	window     int
	confidence float64
	now        func() time.Time
}

func New(deps Deps) *Dispatcher {
	if deps.Window <= 0 {
		deps.Window = 8
	}
	if deps.Confidence <= 0 {
		deps.Confidence = 0.6
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Dispatcher{
		calls:      deps.Calls,
		services:   deps.Services,
		log:        deps.Log,
		brain:      deps.Brain,
		intents:    deps.Intents,
		caps:       deps.Caps,
		line:       deps.Line,
		stt:        deps.STT,
		intercepts: deps.Intercepts,
		metrics:    deps.Metrics,
		soundsDir:  deps.SoundsDir,
		city:       deps.City,
		loc:        deps.Location,
		window:     deps.Window,
		confidence: deps.Confidence,
		now:        time.Now,
	}
}

// StartCall answers a new call on an extension. One-shot services speak
// their whole piece and hang up; looping services play their opener (or a
// generated one) and wait for the caller.
func (d *Dispatcher) StartCall(ctx context.Context, exten, city string) (Verdict, error) {
	if city == "" {
		city = d.city
	}
	fresh, stale := d.calls.Begin(exten, city)
	if stale != nil {
		d.line.PurgeCall(stale.ID)
		if err := d.log.Purge(ctx, stale.ID); err != nil {
			log.Printf("dispatch: purge stale call %s: %v", stale.ID, err)
		}
		if stale.Status == call.StatusActive {
			d.decActive()
		}
	}

	svc := d.services.ForExtension(exten)
	_ = d.calls.SetService(exten, svc.Key)
	fresh.ServiceKey = svc.Key

	if d.metrics != nil {
		d.metrics.ActiveCalls.Inc()
		d.metrics.CallEvents.WithLabelValues("start").Inc()
	}

	if !svc.Loop {
		ended, err := d.runHandler(ctx, fresh, svc)
		if err != nil {
			return d.terminate(exten, "failed", ModeOnce), err
		}
		// The handler may have closed the call itself (sign-off, or the
		// fixed unavailable line); the closer stays unspoken then.
		if !ended && svc.Closer != "" {
			if _, err := d.speak(ctx, fresh, svc, svc.Closer); err != nil {
				return d.terminate(exten, "failed", ModeOnce), err
			}
		}
		return d.terminate(exten, "completed", ModeOnce), nil
	}

	if svc.Opener != "" {
		if _, err := d.speak(ctx, fresh, svc, svc.Opener); err != nil {
			return d.terminate(exten, "failed", ModeLoop), err
		}
	} else {
		// No canned opener: the persona improvises one from its template.
		ended, err := d.runHandler(ctx, fresh, svc)
		if err != nil {
			return d.terminate(exten, "failed", ModeLoop), err
		}
		if ended {
			return d.terminate(exten, "completed", ModeLoop), nil
		}
	}
	_ = d.calls.MarkGreeted(exten)
	return Verdict{Mode: ModeLoop}, nil
}

// HandleUtterance processes one recorded caller turn on a live call.
func (d *Dispatcher) HandleUtterance(ctx context.Context, exten string, audio io.Reader) (Verdict, error) {
	started := d.now()
	s, err := d.calls.Get(exten)
	if err != nil {
		return Verdict{}, err
	}
	if s.Ended() {
		return Verdict{Mode: ModeLoop, Terminated: true}, nil
	}

	heard := ""
	if audio != nil {
		raw, err := d.stt.Transcribe(ctx, audio)
		if err != nil {
			d.providerError("stt", "transcribe")
			log.Printf("dispatch: transcribe call %s: %v", s.ID, err)
		} else {
			heard = speech.CleanTranscript(raw)
		}
	}

	svc, ok := d.services.ByKey(s.ServiceKey)
	if !ok {
		svc = d.services.Default()
	}

	if heard == "" {
		if _, err := d.speak(ctx, s, svc, stillThereLine); err != nil {
			return d.terminate(exten, "failed", ModeLoop), err
		}
		return Verdict{Mode: ModeLoop}, nil
	}

	d.appendTurn(ctx, s.ID, convlog.RoleCaller, heard)
	_ = d.calls.AdvanceTurn(exten)

	if hangupRE.MatchString(heard) {
		_, _ = d.speak(ctx, s, svc, hangupLine)
		return d.terminate(exten, "hangup", ModeLoop), nil
	}

	if d.intercepts != nil {
		if ic, fired := d.intercepts.Maybe(); fired {
			if d.metrics != nil {
				d.metrics.CallEvents.WithLabelValues("intercept").Inc()
			}
			if err := d.line.PlayRecording(ctx, s.ID, filepath.Join(d.soundsDir, ic.Recording)); err != nil {
				log.Printf("dispatch: intercept %s on call %s: %v", ic.Group, s.ID, err)
			}
			if ic.Terminal {
				return d.terminate(exten, "intercept_drop", ModeLoop), nil
			}
			return Verdict{Mode: ModeLoop}, nil
		}
	}

	// One-shot services say their piece at call start and never loop, no
	// matter what the caller says afterward.
	if !svc.Loop {
		return d.terminate(exten, "completed", ModeOnce), nil
	}

	defer func() {
		if d.metrics != nil {
			d.metrics.ObserveTurnLatency(d.now().Sub(started))
		}
	}()

	if svc.HasTurnHandler() {
		ended, err := d.runHandler(ctx, s, svc)
		if ended {
			return d.terminate(exten, "completed", ModeLoop), err
		}
		return Verdict{Mode: ModeLoop}, err
	}

	// Handler-less line: let the classifier route the caller, falling back
	// to operator small talk.
	res := d.intents.Classify(ctx, heard)
	if res.Confidence > d.confidence {
		if key := res.ServiceKey(); key != "" && key != svc.Key {
			if target, found := d.services.ByKey(key); found {
				if svc.Directory {
					if _, err := d.speak(ctx, s, svc, directoryListing(target)); err != nil {
						return d.terminate(exten, "failed", ModeLoop), err
					}
					return Verdict{Mode: ModeLoop}, nil
				}
				return d.switchService(ctx, exten, s, target)
			}
		}
	}

	chat := *svc
	chat.TurnPrompt = operatorChatPrompt
	chat.Sampling = operatorChatSampling
	chat.Handler = catalog.HandlerPersona
	ended, err := d.runHandler(ctx, s, &chat)
	if ended {
		return d.terminate(exten, "completed", ModeLoop), err
	}
	return Verdict{Mode: ModeLoop}, err
}

// switchService re-routes a live call to the service the classifier picked.
func (d *Dispatcher) switchService(ctx context.Context, exten string, s *call.Session, target *catalog.Service) (Verdict, error) {
	if d.metrics != nil {
		d.metrics.IntentSwitches.WithLabelValues(target.Key).Inc()
	}
	_ = d.calls.SetService(exten, target.Key)
	s.ServiceKey = target.Key

	if !target.Loop {
		ended, err := d.runHandler(ctx, s, target)
		if err != nil {
			return d.terminate(exten, "failed", ModeOnce), err
		}
		if !ended && target.Closer != "" {
			_, _ = d.speak(ctx, s, target, target.Closer)
		}
		return d.terminate(exten, "completed", ModeOnce), nil
	}

	if target.Opener != "" {
		if _, err := d.speak(ctx, s, target, target.Opener); err != nil {
			return d.terminate(exten, "failed", ModeLoop), err
		}
	} else {
		ended, err := d.runHandler(ctx, s, target)
		if err != nil {
			return d.terminate(exten, "failed", ModeLoop), err
		}
		if ended {
			return d.terminate(exten, "completed", ModeLoop), nil
		}
	}
	_ = d.calls.MarkGreeted(exten)
	return Verdict{Mode: ModeLoop}, nil
}

// runHandler executes the service's bound turn handler. It reports whether
// the call should end.
func (d *Dispatcher) runHandler(ctx context.Context, s *call.Session, svc *catalog.Service) (bool, error) {
	if svc.Handler == catalog.HandlerClock {
		return d.runClock(ctx, s, svc)
	}
	return d.runPersona(ctx, s, svc)
}

func (d *Dispatcher) terminate(exten, event, mode string) Verdict {
	if _, err := d.calls.End(exten); err == nil {
		d.decActive()
		if d.metrics != nil {
			d.metrics.CallEvents.WithLabelValues(event).Inc()
		}
	}
	return Verdict{Mode: mode, Terminated: true}
}

func (d *Dispatcher) decActive() {
	if d.metrics != nil {
		d.metrics.ActiveCalls.Dec()
	}
}

func (d *Dispatcher) providerError(provider, code string) {
	if d.metrics != nil {
		d.metrics.ProviderErrors.WithLabelValues(provider, code).Inc()
	}
}

// speak renders text on the line and records it as an assistant turn. The
// returned flag reports whether the assistant signed off.
func (d *Dispatcher) speak(ctx context.Context, s *call.Session, svc *catalog.Service, text string) (bool, error) {
	if err := d.line.Speak(ctx, s.ID, svc.Voice, text); err != nil {
		d.providerError("tts", "synthesize")
		return false, err
	}
	d.appendTurn(ctx, s.ID, convlog.RoleAssistant, text)
	return goodbyeRE.MatchString(text), nil
}

func (d *Dispatcher) appendTurn(ctx context.Context, callID string, role convlog.Role, text string) {
	turn := convlog.Turn{
		ID:        uuid.NewString(),
		CallID:    callID,
		Role:      role,
		Text:      text,
		CreatedAt: d.now().UTC(),
	}
	if err := d.log.Append(ctx, turn); err != nil {
		log.Printf("dispatch: append turn for call %s: %v", callID, err)
	}
}

// directoryListing renders a 411 answer. When the dial code is exactly the
// keypad spelling of the service name, the listing points out the mnemonic;
// truncated spellings and traditional numbers (0, 411) are just read out.
func directoryListing(target *catalog.Service) string {
	name := strings.ToLower(target.Key)
	code := catalog.SpokenDigits(target.Extension)
	if catalog.DialDigits(target.Key) == target.Extension {
		return fmt.Sprintf("For the %s line, dial %s. That spells %s. Anyone else?", name, code, target.Key)
	}
	return fmt.Sprintf("For the %s line, dial %s. Anyone else?", name, code)
}

func (d *Dispatcher) tokenContext(s *call.Session, now time.Time) tokens.Context {
	return tokens.Context{
		Now:       now,
		City:      s.City,
		Extension: s.Extension,
		CallID:    s.ID,
		RenderID:  uuid.NewString(),
	}
}

func (d *Dispatcher) callContext(s *call.Session, now time.Time) capability.CallContext {
	return capability.CallContext{
		City:      s.City,
		Now:       now,
		CallID:    s.ID,
		Extension: s.Extension,
	}
}
