package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ridepay/internal/metrics"
	"ridepay/internal/payments"
	"ridepay/internal/ratelimiter"

	"go.uber.org/zap/zaptest"
)

// fakeGateway stands in for the upstream payment gateway and records what
// the relay forwarded.
type fakeGateway struct {
	mu       sync.Mutex
	requests []map[string]any
	headers  []http.Header
	handler  http.HandlerFunc
	srv      *httptest.Server
}

func newFakeGateway(t *testing.T, handler http.HandlerFunc) *fakeGateway {
	t.Helper()

	g := &fakeGateway{handler: handler}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		g.mu.Lock()
		g.requests = append(g.requests, body)
		g.headers = append(g.headers, r.Header.Clone())
		g.mu.Unlock()

		g.handler(w, r)
	}))
	t.Cleanup(g.srv.Close)

	return g
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *fakeGateway) request(i int) map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[i]
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestConfig(gatewayURL string) config {
	return config{
		addr: ":0",
		env:  "test",
		gateway: gatewayConfig{
			baseURL:     gatewayURL,
			secretKey:   "CHASECK_TEST-secret",
			callbackURL: "https://relay.test/webhook",
			currency:    "ETB",
			timeout:     2 * time.Second,
		},
		relay: relayConfig{
			txRefNamespace:         "RIDE",
			placeholderEmailDomain: "gmail.com",
		},
		rateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: 20,
			TimeFrame:            time.Minute,
			Enabled:              false,
		},
	}
}

func newTestApplication(t *testing.T, cfg config) *application {
	t.Helper()

	gateway := payments.NewChapaAdapter(payments.ChapaConfig{
		BaseURL:     cfg.gateway.baseURL,
		SecretKey:   cfg.gateway.secretKey,
		CallbackURL: cfg.gateway.callbackURL,
		Timeout:     cfg.gateway.timeout,
	}, nil)

	return &application{
		config: cfg,
		logger: zaptest.NewLogger(t).Sugar(),
		payments: payments.NewRelay(gateway, payments.RelayConfig{
			Currency:               cfg.gateway.currency,
			TxRefNamespace:         cfg.relay.txRefNamespace,
			PlaceholderEmailDomain: cfg.relay.placeholderEmailDomain,
			Timeout:                cfg.gateway.timeout,
		}),
		rateLimiter: ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame),
		metrics:     metrics.New(),
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func postPayment(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/initialize-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d", expected, actual)
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rr.Body.String())
	}
	return env
}
