package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddleware(t *testing.T) {
	allowChain := &Chain{DefaultDecision: Yes}
	denyChain := &Chain{DefaultDecision: No}

	tests := []struct {
		name       string
		chain      *Chain
		path       string
		wantStatus int
	}{
		{
			name:       "allowed request reaches handler",
			chain:      allowChain,
			path:       "/api/chat",
			wantStatus: http.StatusOK,
		},
		{
			name:       "denied request gets 401",
			chain:      denyChain,
			path:       "/api/chat",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "healthz bypasses auth",
			chain:      denyChain,
			path:       "/healthz",
			wantStatus: http.StatusOK,
		},
		{
			name:       "metrics bypasses auth",
			chain:      denyChain,
			path:       "/metrics",
			wantStatus: http.StatusOK,
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Middleware(tt.chain, DefaultBypassEndpoints)(next)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if !strings.Contains(rec.Body.String(), "authentication required") {
					t.Errorf("body = %q, want the JSON error envelope", rec.Body.String())
				}
			}
		})
	}
}

func TestMiddlewareRejectsEmptySubject(t *testing.T) {
	chain := &Chain{Authenticators: []Authenticator{
		&staticAuthenticator{result: Result{Decision: Yes, Identity: &Identity{}}},
	}}
	handler := Middleware(chain, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached despite empty subject")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
