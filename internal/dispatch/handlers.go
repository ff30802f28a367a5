package dispatch

import (
	"context"
	"log"
	"strings"

	"github.com/potsbox/exchange/internal/brain"
	"github.com/potsbox/exchange/internal/call"
	"github.com/potsbox/exchange/internal/catalog"
	"github.com/potsbox/exchange/internal/convlog"
	"github.com/potsbox/exchange/internal/tokens"
)

// runClock speaks the local time. No model call involved; the time line
// must be exact.
func (d *Dispatcher) runClock(ctx context.Context, s *call.Session, svc *catalog.Service) (bool, error) {
	now := d.now().In(d.loc)
	words := tokens.SecondsToWords(now.Second())
	line, err := tokens.Expand("At the tone, the time will be {time} and "+words+".", d.tokenContext(s, now), nil)
	if err != nil {
		return true, err
	}
	if _, err := d.speak(ctx, s, svc, line); err != nil {
		return true, err
	}
	if _, err := d.speak(ctx, s, svc, "BEEEP!"); err != nil {
		return true, err
	}
	return false, nil
}

// runPersona runs one model turn for the service: fetch required facts,
// expand the template, replay the recent window, speak the reply.
func (d *Dispatcher) runPersona(ctx context.Context, s *call.Session, svc *catalog.Service) (bool, error) {
	now := d.now().In(d.loc)

	fetched := map[string]string{}
	if len(svc.Requires) > 0 && d.caps != nil {
		fetched = d.caps.FetchAll(ctx, svc.Requires, d.callContext(s, now))
	}

	system, err := tokens.Expand(svc.TurnPrompt, d.tokenContext(s, now), fetched)
	if err != nil {
		// A fact the persona depends on is missing. Fail closed rather than
		// let the model improvise weather or history.
		log.Printf("dispatch: %s template on call %s: %v", svc.Key, s.ID, err)
		_, _ = d.speak(ctx, s, svc, unavailableLine)
		return true, nil
	}

	msgs := []brain.Message{{Role: "system", Content: system}}
	turns, err := d.log.Turns(ctx, s.ID)
	if err != nil {
		log.Printf("dispatch: load turns for call %s: %v", s.ID, err)
	}
	for _, t := range convlog.Window(turns, d.window) {
		role := "user"
		if t.Role == convlog.RoleAssistant {
			role = "assistant"
		}
		msgs = append(msgs, brain.Message{Role: role, Content: t.Text})
	}

	reply, err := d.brain.Generate(ctx, brain.Request{
		Messages:    msgs,
		Temperature: svc.Sampling.Temperature,
		MaxTokens:   svc.Sampling.MaxTokens,
	})
	if err != nil {
		d.providerError("brain", "generate")
		log.Printf("dispatch: %s turn on call %s: %v", svc.Key, s.ID, err)
		_, _ = d.speak(ctx, s, svc, apologyLine)
		return true, nil
	}

	reply = cleanReply(reply)
	if reply == "" {
		_, _ = d.speak(ctx, s, svc, stillThereLine)
		return false, nil
	}

	signedOff, err := d.speak(ctx, s, svc, reply)
	if err != nil {
		return true, err
	}
	return signedOff, nil
}

// cleanReply trims transcript-style prefixes and stray quoting the model
// sometimes wraps a spoken line in.
func cleanReply(text string) string {
	text = strings.TrimSpace(text)
	text = replyPrefixRE.ReplaceAllString(text, "")
	text = strings.Trim(text, `"`)
	return strings.TrimSpace(text)
}
