package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/observability"
	"github.com/matzehuels/equalpath/pkg/pipeline"
)

const chainDOT = `digraph g { s [initial=1]; t [final=1]; s -> a; a -> t; }`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	ts := httptest.NewServer(New(runner, logger, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/solve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q", resp.StatusCode, body)
	}
}

func TestSolve(t *testing.T) {
	ts := newTestServer(t)
	req := solveRequest{
		Graphs:  []pipeline.Input{{Name: "g1", Format: "dot", Content: chainDOT}},
		Options: pipeline.Options{Exhaustive: true},
	}
	body, _ := json.Marshal(req)
	resp := post(t, ts, string(body))
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}

	var rep pipeline.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if !rep.Found || rep.Length != 2 {
		t.Errorf("Found, Length = %v, %d; want true, 2", rep.Found, rep.Length)
	}
	var got [][][]string
	for _, a := range rep.FoundAttempts() {
		got = append(got, a.Paths)
	}
	want := [][][]string{{{"s", "a", "t"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	if rep.RunID == "" {
		t.Error("missing run_id")
	}
}

func TestSolveOptionsFromJSON(t *testing.T) {
	ts := newTestServer(t)
	body := `{"graphs":[{"name":"g1","content":` + jsonString(chainDOT) + `}],
		"options":{"mode":"global","formula":true}}`
	resp := post(t, ts, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rep pipeline.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.Mode != pipeline.ModeGlobal || len(rep.Attempts) != 1 || rep.Attempts[0].Formula == "" {
		t.Errorf("report = %+v", rep)
	}
}

func TestSolveErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		code   errs.Code
	}{
		{"malformed json", `{"graphs":`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"unknown field", `{"graphz":[]}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"no graphs", `{"graphs":[]}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad name", `{"graphs":[{"name":"../x","content":"digraph{}"}]}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad order", `{"graphs":[{"name":"g","content":"digraph{}"}],"options":{"order":"up"}}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad format", `{"graphs":[{"name":"g","format":"xml","content":"<g/>"}]}`, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"no target", `{"graphs":[{"name":"g","content":"digraph { s [initial=1]; }"}]}`, http.StatusBadRequest, errs.ErrCodeNoTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code || e.Message == "" {
				t.Errorf("error body = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestSolveWrongContentType(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/v1/solve", "text/plain", bytes.NewBufferString("{}"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestSolveTimeout(t *testing.T) {
	ts := newTestServer(t, WithSolveTimeout(time.Nanosecond))
	body, _ := json.Marshal(solveRequest{Graphs: []pipeline.Input{{Name: "g", Content: chainDOT}}})
	resp := post(t, ts, string(body))
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", resp.StatusCode)
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *httpRecorder) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *httpRecorder) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &httpRecorder{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	post(t, ts, `{"graphs":[]}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if diff := cmp.Diff([]string{"GET /healthz", "POST /v1/solve"}, hooks.requests); diff != "" {
		t.Errorf("requests (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{200, 400}, hooks.statuses); diff != "" {
		t.Errorf("statuses (-want +got):\n%s", diff)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, log.New(io.Discard)), log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
