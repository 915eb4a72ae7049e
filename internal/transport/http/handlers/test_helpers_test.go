package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/infrastructure/memory"
	"github.com/northbeam/accounts-service/internal/infrastructure/security"
	"github.com/northbeam/accounts-service/internal/transport/http/middleware"
	"github.com/northbeam/accounts-service/internal/transport/http/response"
	"github.com/northbeam/accounts-service/internal/transport/http/router"
)

const testBcryptCost = 4

// captureNotifier records every mail so tests can pull verification
// codes and reset links out of the "outbox".
type captureNotifier struct {
	mu   sync.Mutex
	sent []auth.Mail
}

func (c *captureNotifier) Send(ctx context.Context, m auth.Mail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, m)
	return nil
}

func (c *captureNotifier) last(kind auth.MailKind) (auth.Mail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Kind == kind {
			return c.sent[i], true
		}
	}
	return auth.Mail{}, false
}

type testServer struct {
	handler  http.Handler
	notifier *captureNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewAccountStore()
	hasher := security.NewBcryptHasher(testBcryptCost)
	signer := security.NewJWTSigner("test-secret", "accounts-service")
	notifier := &captureNotifier{}

	svc := auth.NewService(store, hasher, signer, notifier, auth.Config{
		ClientOrigin: "https://app.example.com",
	})

	authH := NewAuthHandler(svc, 7*24*time.Hour, false)
	healthH := NewHealthHandler(nil, nil)

	h, err := router.New(router.Deps{
		Health:    healthH,
		Auth:      authH,
		SessionMW: middleware.Session(signer, response.WriteError),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	return &testServer{handler: h, notifier: notifier}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec.Result()
}

type apiBody struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	User    map[string]any `json:"user"`
}

func readBody(t *testing.T, res *http.Response) apiBody {
	t.Helper()

	defer res.Body.Close()
	var b apiBody
	if err := json.NewDecoder(res.Body).Decode(&b); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return b
}

func sessionCookie(res *http.Response) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == security.SessionCookieName {
			return c
		}
	}
	return nil
}

// signup registers an account and returns its session cookie.
func (s *testServer) signup(t *testing.T, email, password, name string) *http.Cookie {
	t.Helper()

	res := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": password, "name": name,
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", res.StatusCode)
	}
	c := sessionCookie(res)
	if c == nil {
		t.Fatalf("signup set no session cookie")
	}
	res.Body.Close()
	return c
}
