package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/preview"
	"github.com/matzehuels/cladding/pkg/store"
)

const sceneJSON = `{
  "unit": "mm",
  "regions": [
    {"id": "wall", "points": [[0,0,0], [0,2000,0], [0,2000,1000], [0,0,1000]], "normal": [1,0,0]}
  ]
}`

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(cfg, nil, store.NewMemoryStore(), log.New(io.Discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.previews.Store.Close()
	})
	return srv, ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func errorCode(t *testing.T, data []byte) errors.Code {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body %q: %v", data, err)
	}
	return body.Code
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	resp, data := do(t, ts, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte(`"ok"`)) {
		t.Errorf("GET /healthz = %d %s", resp.StatusCode, data)
	}
}

func TestLayoutLifecycle(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	body := `{"scene": ` + sceneJSON + `, "formats": ["svg", "png", "json"], "commit": true, "config": {"patternStyle": "stack_bond"}}`
	resp, data := do(t, ts, http.MethodPost, "/v1/layouts", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /v1/layouts = %d %s", resp.StatusCode, data)
	}
	var created layoutResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatal(err)
	}
	if !created.Committed || created.Layout.Created == 0 {
		t.Fatalf("response = %+v", created)
	}
	if created.Layout.Config.PatternStyle != "stack_bond" {
		t.Errorf("pattern = %s, want stack_bond", created.Layout.Config.PatternStyle)
	}
	if created.Layout.Config.ElementLengths == nil {
		t.Error("omitted config keys lost their defaults")
	}
	if !strings.HasPrefix(created.Artifacts["svg"], "<svg") {
		t.Errorf("svg artifact = %.40q", created.Artifacts["svg"])
	}
	if !strings.HasPrefix(created.Artifacts["png"], "iVBORw0KGgo") {
		t.Errorf("png artifact is not base64 png: %.20q", created.Artifacts["png"])
	}

	path := "/v1/layouts/" + created.RunID
	if resp, data := do(t, ts, http.MethodGet, path, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s = %d %s", path, resp.StatusCode, data)
	}
	resp, data = do(t, ts, http.MethodGet, path+"/svg?width=400&labels=true", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("GET %s/svg = %d %s", path, resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(data, []byte("<svg")) {
		t.Errorf("svg body = %.40q", data)
	}

	resp, data = do(t, ts, http.MethodGet, "/v1/layouts?limit=5", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte(created.RunID)) {
		t.Errorf("GET /v1/layouts = %d %s", resp.StatusCode, data)
	}

	if resp, _ := do(t, ts, http.MethodDelete, path, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE = %d", resp.StatusCode)
	}
	resp, data = do(t, ts, http.MethodGet, path, "")
	if resp.StatusCode != http.StatusNotFound || errorCode(t, data) != errors.ErrCodeNotFound {
		t.Errorf("GET after delete = %d %s", resp.StatusCode, data)
	}
}

func TestLayoutErrors(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed body", http.MethodPost, "/v1/layouts", `{"scene":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"no scene", http.MethodPost, "/v1/layouts", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidScene},
		{"bad format", http.MethodPost, "/v1/layouts", `{"scene": ` + sceneJSON + `, "formats": ["pdf"]}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad unit", http.MethodPost, "/v1/layouts", `{"scene": ` + sceneJSON + `, "config": {"unit": "cubits"}}`, http.StatusBadRequest, errors.ErrCodeConfiguration},
		{"bad limit", http.MethodGet, "/v1/layouts?limit=x", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"render format", http.MethodGet, "/v1/layouts/run/stl", "", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"missing preview", http.MethodGet, "/v1/previews/nobody", "", http.StatusNotFound, errors.ErrCodeSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, ts, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, data)
			}
			if got := errorCode(t, data); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestPreviewLifecycle(t *testing.T) {
	srv, ts := newTestServer(t, Config{})
	body := `{"scene": ` + sceneJSON + `, "config": {"ghostDelayMillis": 1}}`

	resp, data := do(t, ts, http.MethodPut, "/v1/previews/s1", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT preview = %d %s", resp.StatusCode, data)
	}
	var first preview.Preview
	if err := json.Unmarshal(data, &first); err != nil {
		t.Fatal(err)
	}
	if first.SessionID != "s1" || !first.Result.Preview {
		t.Fatalf("preview = %+v", first)
	}

	p, err := srv.previews.Store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Schedule().Wait(ctx); err != nil {
		t.Fatal(err)
	}

	resp, data = do(t, ts, http.MethodGet, "/v1/previews/s1/elements", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET elements = %d %s", resp.StatusCode, data)
	}
	var els elementsResponse
	if err := json.Unmarshal(data, &els); err != nil {
		t.Fatal(err)
	}
	if len(els.Elements) != first.Result.Created || els.Pending != 0 {
		t.Fatalf("elements = %d pending %d, want %d pending 0", len(els.Elements), els.Pending, first.Result.Created)
	}
	for _, e := range els.Elements {
		if e.Alpha != 1 {
			t.Errorf("element %d alpha = %v after ghosting, want 1", e.Panel.Sequence, e.Alpha)
		}
	}

	// A second preview replaces the first and removes its elements.
	if resp, data := do(t, ts, http.MethodPut, "/v1/previews/s1", body); resp.StatusCode != http.StatusOK {
		t.Fatalf("second PUT = %d %s", resp.StatusCode, data)
	}
	if runs := srv.elements.Runs(); len(runs) != 1 || runs[0] == first.Result.RunID {
		t.Errorf("collector runs = %v after replace", runs)
	}

	if resp, _ := do(t, ts, http.MethodDelete, "/v1/previews/s1", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE preview = %d", resp.StatusCode)
	}
	if runs := srv.elements.Runs(); len(runs) != 0 {
		t.Errorf("collector runs = %v after delete", runs)
	}
	if resp, _ := do(t, ts, http.MethodGet, "/v1/previews/s1", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET deleted preview = %d", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	_, ts := newTestServer(t, Config{RateLimit: 0.001, Burst: 1})

	if resp, _ := do(t, ts, http.MethodGet, "/v1/layouts", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("first request = %d", resp.StatusCode)
	}
	resp, data := do(t, ts, http.MethodGet, "/v1/layouts", "")
	if resp.StatusCode != http.StatusTooManyRequests || errorCode(t, data) != errors.ErrCodeRateLimited {
		t.Errorf("second request = %d %s", resp.StatusCode, data)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if resp, _ := do(t, ts, http.MethodGet, "/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz was rate limited: %d", resp.StatusCode)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidScene, http.StatusBadRequest},
		{errors.ErrCodeSessionNotFound, http.StatusNotFound},
		{errors.ErrCodeRateLimited, http.StatusTooManyRequests},
		{errors.ErrCodeCommitFailure, http.StatusBadGateway},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.code); got != tt.want {
			t.Errorf("statusOf(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestInternalErrorsHideDetail(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, io.ErrUnexpectedEOF)
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "EOF") {
		t.Errorf("writeError = %d %s", w.Code, w.Body)
	}
}
