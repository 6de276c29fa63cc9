package claims

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/ihub"
	"github.com/neweco/claims-orchestrator/internal/refdata"
	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// fakePlatform stands in for the claims platform. Routes are keyed by
// "METHOD /path"; every request is recorded so tests can assert call order
// and short-circuit behavior.
type fakePlatform struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []string
	routes map[string]http.HandlerFunc
	server *httptest.Server
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{t: t, routes: map[string]http.HandlerFunc{}}
	p.server = httptest.NewServer(p)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePlatform) handle(key string, fn http.HandlerFunc) {
	p.routes[key] = fn
}

func (p *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	p.mu.Lock()
	p.calls = append(p.calls, key)
	p.mu.Unlock()

	fn, ok := p.routes[key]
	if !ok {
		p.t.Errorf("unexpected upstream call %s", key)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	fn(w, r)
}

func (p *fakePlatform) callList() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePlatform) called(key string) bool {
	for _, call := range p.callList() {
		if call == key {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func okEnvelope(model any) map[string]any {
	return map[string]any{"Status": "OK", "Model": model}
}

// newTestService wires a Service against the fake platform. ihubURL may be
// empty for workflows that never notify.
func newTestService(t *testing.T, p *fakePlatform, ihubURL string) *Service {
	t.Helper()
	logger := zap.NewNop()
	client := upstream.NewClient(upstream.Config{BaseURL: p.server.URL, Token: "test-token"}, logger)
	resolver := refdata.NewResolver(client, "1", logger)
	notifier := ihub.NewNotifier(ihub.Config{URL: ihubURL, Token: "ihub-token"}, logger)
	return NewService(client, resolver, notifier, Config{
		OrganID:          1000000000002,
		ProductTreeIndex: 2,
	}, logger)
}

// searchHandler returns the given docs for the claim entity search.
func searchHandler(docs []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"Results": []any{map[string]any{"SolrDocs": docs}},
		})
	}
}
