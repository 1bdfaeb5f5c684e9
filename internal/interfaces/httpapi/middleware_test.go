package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/padelhq/courtsight/internal/domain/user"
	"github.com/padelhq/courtsight/internal/usecase"
)

type stubVerifier struct {
	principal user.Principal
	err       error
}

func (s stubVerifier) VerifyAccessToken(_ context.Context, _ string) (user.Principal, error) {
	return s.principal, s.err
}

func TestRequireAuth_InjectsPrincipal(t *testing.T) {
	verifier := stubVerifier{principal: user.Principal{UserID: "user-1", Email: "a@b.c"}}

	var got user.Principal
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = principalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()

	RequireAuth(verifier, next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !ok || got.UserID != "user-1" {
		t.Fatalf("expected principal in context, got %+v ok=%v", got, ok)
	}
}

func TestRequireAuth_RejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("next handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rec := httptest.NewRecorder()

	RequireAuth(stubVerifier{}, next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAuth_PropagatesVerifierError(t *testing.T) {
	verifier := stubVerifier{err: fmt.Errorf("%w: clerkd circuit open", usecase.ErrDependencyUnavailable)}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("next handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()

	RequireAuth(verifier, next).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireInternalJobToken("secret-token", next)

	t.Run("accepts matching token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/poll-analysis", nil)
		req.Header.Set("X-Internal-Job-Token", "secret-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/poll-analysis", nil)
		req.Header.Set("X-Internal-Job-Token", "other")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("unconfigured token disables endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/poll-analysis", nil)
		rec := httptest.NewRecorder()

		RequireInternalJobToken("", next).ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
	})
}
