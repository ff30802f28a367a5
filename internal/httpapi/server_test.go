package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/potsbox/exchange/internal/call"
	"github.com/potsbox/exchange/internal/catalog"
	"github.com/potsbox/exchange/internal/config"
	"github.com/potsbox/exchange/internal/convlog"
	"github.com/potsbox/exchange/internal/dispatch"
	"github.com/potsbox/exchange/internal/speech"
)

type fakeExchange struct {
	startVerdict dispatch.Verdict
	replyVerdict dispatch.Verdict
	err          error

	startedExten string
	startedCity  string
	replyExten   string
	replyAudio   string
}

func (f *fakeExchange) StartCall(_ context.Context, exten, city string) (dispatch.Verdict, error) {
	f.startedExten = exten
	f.startedCity = city
	return f.startVerdict, f.err
}

func (f *fakeExchange) HandleUtterance(_ context.Context, exten string, audio io.Reader) (dispatch.Verdict, error) {
	f.replyExten = exten
	if audio != nil {
		b, _ := io.ReadAll(audio)
		f.replyAudio = string(b)
	}
	return f.replyVerdict, f.err
}

func newTestServer(t *testing.T, ex *fakeExchange, soundsDir string) *httptest.Server {
	t.Helper()
	services, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := config.Config{SoundsDir: soundsDir}
	line := speech.NewLineOut(soundsDir, speech.NewMockProvider())
	srv := New(cfg, ex, services, call.NewManager(time.Minute), convlog.NewInMemoryStore(), line)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestStartRespondsLoopOrOnce(t *testing.T) {
	ex := &fakeExchange{startVerdict: dispatch.Verdict{Mode: dispatch.ModeLoop}}
	ts := newTestServer(t, ex, t.TempDir())

	res, err := http.Post(ts.URL+"/call/start?exten=0&city=Chicago", "text/plain", nil)
	if err != nil {
		t.Fatalf("start request error = %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if string(body) != "loop" {
		t.Fatalf("body = %q, want loop", body)
	}
	if ex.startedExten != "0" || ex.startedCity != "Chicago" {
		t.Fatalf("exchange saw exten=%q city=%q", ex.startedExten, ex.startedCity)
	}

	ex.startVerdict = dispatch.Verdict{Mode: dispatch.ModeOnce, Terminated: true}
	res2, err := http.Post(ts.URL+"/call/start?exten=8463", "text/plain", nil)
	if err != nil {
		t.Fatalf("start request error = %v", err)
	}
	defer res2.Body.Close()
	body2, _ := io.ReadAll(res2.Body)
	if string(body2) != "once" {
		t.Fatalf("body = %q, want once", body2)
	}
}

func TestStartDefaultsToOperatorExtension(t *testing.T) {
	ex := &fakeExchange{startVerdict: dispatch.Verdict{Mode: dispatch.ModeLoop}}
	ts := newTestServer(t, ex, t.TempDir())

	res, err := http.Post(ts.URL+"/call/start", "text/plain", nil)
	if err != nil {
		t.Fatalf("start request error = %v", err)
	}
	res.Body.Close()
	if ex.startedExten != "0" {
		t.Fatalf("exten = %q, want 0", ex.startedExten)
	}
}

func TestReplyUsesPostedAudio(t *testing.T) {
	ex := &fakeExchange{replyVerdict: dispatch.Verdict{Mode: dispatch.ModeLoop}}
	ts := newTestServer(t, ex, t.TempDir())

	res, err := http.Post(ts.URL+"/call/reply?exten=0", "audio/wav", strings.NewReader("RIFFbytes"))
	if err != nil {
		t.Fatalf("reply request error = %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if string(body) != "OK\n" {
		t.Fatalf("body = %q, want OK", body)
	}
	if ex.replyAudio != "RIFFbytes" {
		t.Fatalf("exchange saw audio %q", ex.replyAudio)
	}
}

func TestReplyFallsBackToInputFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0_in.wav"), []byte("filebytes"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	ex := &fakeExchange{replyVerdict: dispatch.Verdict{Mode: dispatch.ModeLoop}}
	ts := newTestServer(t, ex, dir)

	res, err := http.Post(ts.URL+"/call/reply?exten=0", "text/plain", nil)
	if err != nil {
		t.Fatalf("reply request error = %v", err)
	}
	res.Body.Close()
	if ex.replyAudio != "filebytes" {
		t.Fatalf("exchange saw audio %q", ex.replyAudio)
	}
}

func TestReplySignalsDone(t *testing.T) {
	ex := &fakeExchange{replyVerdict: dispatch.Verdict{Mode: dispatch.ModeLoop, Terminated: true}}
	ts := newTestServer(t, ex, t.TempDir())

	res, err := http.Post(ts.URL+"/call/reply?exten=0", "audio/wav", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("reply request error = %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if string(body) != "DONE\n" {
		t.Fatalf("body = %q, want DONE", body)
	}
}

func TestReplyWithoutExtensionFails(t *testing.T) {
	ts := newTestServer(t, &fakeExchange{}, t.TempDir())
	res, err := http.Post(ts.URL+"/call/reply", "text/plain", nil)
	if err != nil {
		t.Fatalf("reply request error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestListServices(t *testing.T) {
	ts := newTestServer(t, &fakeExchange{}, t.TempDir())
	res, err := http.Get(ts.URL + "/v1/services")
	if err != nil {
		t.Fatalf("services request error = %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	for _, want := range []string{`"OPERATOR"`, `"8463"`, `"411"`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("services response missing %s: %s", want, body)
		}
	}
}

func TestGetCallReportsGreeting(t *testing.T) {
	services, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	dir := t.TempDir()
	calls := call.NewManager(time.Minute)
	line := speech.NewLineOut(dir, speech.NewMockProvider())
	srv := New(config.Config{SoundsDir: dir}, &fakeExchange{}, services, calls, convlog.NewInMemoryStore(), line)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	sess, _ := calls.Begin("0", "New York City")
	if err := calls.SetService("0", "OPERATOR"); err != nil {
		t.Fatalf("SetService() error = %v", err)
	}
	if err := calls.MarkGreeted("0"); err != nil {
		t.Fatalf("MarkGreeted() error = %v", err)
	}

	res, err := http.Get(ts.URL + "/v1/extensions/0/call")
	if err != nil {
		t.Fatalf("call request error = %v", err)
	}
	defer res.Body.Close()
	var view struct {
		CallID     string `json:"call_id"`
		ServiceKey string `json:"service_key"`
		Greeted    bool   `json:"greeted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatalf("decode call view: %v", err)
	}
	if view.CallID != sess.ID || view.ServiceKey != "OPERATOR" || !view.Greeted {
		t.Fatalf("call view = %+v", view)
	}
}

func TestGetCallUnknownExtension(t *testing.T) {
	ts := newTestServer(t, &fakeExchange{}, t.TempDir())
	res, err := http.Get(ts.URL + "/v1/extensions/9999/call")
	if err != nil {
		t.Fatalf("call request error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}
