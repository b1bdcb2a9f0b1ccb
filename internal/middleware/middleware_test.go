package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
	"github.com/stemsi/examroom/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	tokens  map[string]*service.Claims
	expired string
	current map[int]string
}

func (f *fakeAuth) ValidateToken(token string) (*service.Claims, error) {
	if token == f.expired {
		return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenExpired)
	}
	c, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return c, nil
}

func (f *fakeAuth) ValidateStudentSession(_ context.Context, userID int, jti string) error {
	if f.current[userID] != jti {
		return service.ErrSessionInvalidated
	}
	return nil
}

func newFakeAuth() *fakeAuth {
	student := &service.Claims{Role: model.RoleStudent, UserID: 2}
	student.ID = "jti-current"
	stale := &service.Claims{Role: model.RoleStudent, UserID: 2}
	stale.ID = "jti-old"
	admin := &service.Claims{Role: model.RoleAdmin, UserID: 1}
	return &fakeAuth{
		tokens: map[string]*service.Claims{
			"student": student,
			"stale":   stale,
			"admin":   admin,
		},
		expired: "expired",
		current: map[int]string{2: "jti-current"},
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body %q: %v", w.Body.String(), err)
	}
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func TestStudentChain(t *testing.T) {
	auth := newFakeAuth()
	r := gin.New()
	r.GET("/student", Authenticate(auth), RequireRole(model.RoleStudent), CheckSingleDeviceSession(auth),
		func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"user_id": GetClaims(c).UserID})
		})

	tests := []struct {
		name   string
		header string
		query  string
		status int
		code   response.ErrCode
	}{
		{"missing token", "", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"garbage token", "Bearer nope", "", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"expired token", "Bearer expired", "", http.StatusUnauthorized, response.ErrTokenExpired},
		{"admin token", "Bearer admin", "", http.StatusForbidden, response.ErrStudentAccessOnly},
		{"replaced login", "Bearer stale", "", http.StatusUnauthorized, response.ErrSessionInvalidated},
		{"current login", "Bearer student", "", http.StatusOK, ""},
		{"query token", "", "student", http.StatusOK, ""},
		{"lowercase scheme", "bearer student", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/student"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if got := errorCode(t, w); got != tt.code {
				t.Fatalf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestRequireRoleAdmin(t *testing.T) {
	auth := newFakeAuth()
	r := gin.New()
	r.GET("/admin", Authenticate(auth), RequireRole(model.RoleAdmin), CheckSingleDeviceSession(auth),
		func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for token, want := range map[string]int{"admin": http.StatusNoContent, "student": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s: status = %d, want %d", token, w.Code, want)
		}
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("1.2.3.4"); !ok {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	ok, wait := rl.Allow("1.2.3.4")
	if ok || wait != time.Minute {
		t.Fatalf("third request: ok=%v wait=%v", ok, wait)
	}
	if ok, _ := rl.Allow("5.6.7.8"); !ok {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(time.Minute)
	if ok, _ := rl.Allow("1.2.3.4"); !ok {
		t.Fatal("window should reset")
	}

	now = now.Add(2 * time.Minute)
	rl.sweep()
	if len(rl.clients) != 0 {
		t.Fatalf("expired windows not swept: %d", len(rl.clients))
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		return w
	}
	if w := send(); w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	if got := errorCode(t, w); got != response.ErrRateLimitExceeded {
		t.Fatalf("code = %q", got)
	}
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	large := strings.Repeat("exam ", 1000)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/large", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("large body not compressed: %v", w.Header())
	}
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(plain) != large {
		t.Fatal("decoded body differs")
	}

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Fatalf("small body should pass through: %q %v", w.Body.String(), w.Header())
	}
}

func TestBrotliSkipsStreamsAndOtherEncodings(t *testing.T) {
	large := strings.Repeat("x", 4096)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, large) })

	for name, hdr := range map[string][2]string{
		"sse":  {"Accept", "text/event-stream"},
		"gzip": {"Accept-Encoding", "gzip"},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(hdr[0], hdr[1])
		if name == "sse" {
			req.Header.Set("Accept-Encoding", "br")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Header().Get("Content-Encoding") != "" || w.Body.Len() != len(large) {
			t.Fatalf("%s: response should be plain", name)
		}
	}
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.GET("/", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}
