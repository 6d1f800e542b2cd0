package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/justinas/nosurf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/logging"
)

// fakeModelServer emulates the completion service's chat completions
// endpoint. Queue scripted replies before making requests that reach the
// model; unscripted requests get a bland default.
type fakeModelServer struct {
	mu       sync.Mutex
	replies  []string
	failNext bool
	srv      *httptest.Server
}

func newFakeModelServer(t *testing.T) *fakeModelServer {
	t.Helper()
	f := &fakeModelServer{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		fail := f.failNext
		f.failNext = false
		reply := "Thank you, noted."
		if len(f.replies) > 0 {
			reply = f.replies[0]
			f.replies = f.replies[1:]
		}
		f.mu.Unlock()

		if fail {
			http.Error(w, "model overloaded", http.StatusInternalServerError)
			return
		}

		response := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "llama-3.3-70b-versatile",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": reply,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeModelServer) Queue(replies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
}

func (f *fakeModelServer) FailNext() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = true
}

func testLookupEnv(fakeModelURL string) func(string) (string, bool) {
	env := map[string]string{
		"LEGALINTAKE_ADDR":        "localhost:0",
		"LEGALINTAKE_PPROF_PORT":  ":0",
		"LEGALINTAKE_SQLITE_URL":  ":memory:",
		"LEGALINTAKE_AI_BASE_URL": fakeModelURL,
		"GROQ_API_KEY":            "test-key",
	}
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(25 * time.Millisecond)
		}
	}
}

type testServer struct {
	url    string
	client http.Client
	model  *fakeModelServer
}

// startTestServer starts the application with a fake completion service and
// waits for it to be ready.
func startTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	model := newFakeModelServer(t)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "Addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	go func() {
		if err := run(ctx, logger, testLookupEnv(model.srv.URL)); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()

	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return nil
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		require.NoError(t, waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)))
		jar, err := newUnsafeCookieJar()
		require.NoError(t, err)
		return &testServer{
			url:    serverURL,
			client: http.Client{Jar: jar},
			model:  model,
		}
	}
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// GetJSON fetches a URL and decodes the JSON response body into v.
func (s *testServer) GetJSON(t *testing.T, urlPath string, v any) {
	t.Helper()
	resp := s.Get(t, urlPath)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// CSRFToken fetches the session endpoint and returns the CSRF token required
// for mutating dashboard requests.
func (s *testServer) CSRFToken(t *testing.T) string {
	t.Helper()
	var session struct {
		Name      string `json:"name"`
		CSRFToken string `json:"csrfToken"`
	}
	s.GetJSON(t, "/api/session", &session)
	require.NotEmpty(t, session.CSRFToken)
	return session.CSRFToken
}

// SendJSON sends a JSON request with the given method and CSRF token and
// returns the response. Pass an empty token for CSRF-exempt endpoints.
func (s *testServer) SendJSON(t *testing.T, method, urlPath, csrfToken string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, s.url+urlPath, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if csrfToken != "" {
		req.Header.Set(nosurf.HeaderName, csrfToken)
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	return resp
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	require.NoError(t, resp.Body.Close())
}
