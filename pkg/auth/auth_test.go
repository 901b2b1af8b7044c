package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticAuthenticator always returns the same result.
type staticAuthenticator struct {
	result Result
	called int
}

func (a *staticAuthenticator) Authenticate(_ context.Context, _ *http.Request) Result {
	a.called++
	return a.result
}

func TestChainVoting(t *testing.T) {
	yes := Result{Decision: Yes, Identity: &Identity{Subject: "alice"}}
	no := Result{Decision: No, Err: errors.New("bad key")}
	abstain := Result{Decision: Abstain}

	tests := []struct {
		name            string
		results         []Result
		defaultDecision Decision
		wantDecision    Decision
		wantSubject     string
	}{
		{
			name:         "first yes wins",
			results:      []Result{yes, no},
			wantDecision: Yes,
			wantSubject:  "alice",
		},
		{
			name:         "first no stops the chain",
			results:      []Result{no, yes},
			wantDecision: No,
		},
		{
			name:         "abstain falls through to yes",
			results:      []Result{abstain, yes},
			wantDecision: Yes,
			wantSubject:  "alice",
		},
		{
			name:            "all abstain with default no",
			results:         []Result{abstain, abstain},
			defaultDecision: No,
			wantDecision:    No,
		},
		{
			name:            "all abstain with default yes is anonymous",
			results:         []Result{abstain},
			defaultDecision: Yes,
			wantDecision:    Yes,
			wantSubject:     "anonymous",
		},
		{
			name:            "empty chain uses default",
			results:         nil,
			defaultDecision: Yes,
			wantDecision:    Yes,
			wantSubject:     "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &Chain{DefaultDecision: tt.defaultDecision}
			for _, r := range tt.results {
				chain.Authenticators = append(chain.Authenticators, &staticAuthenticator{result: r})
			}

			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			result := chain.Authenticate(context.Background(), req)

			if result.Decision != tt.wantDecision {
				t.Errorf("Decision = %d, want %d", result.Decision, tt.wantDecision)
			}
			if tt.wantSubject != "" {
				if result.Identity == nil || result.Identity.Subject != tt.wantSubject {
					t.Errorf("Identity = %+v, want subject %q", result.Identity, tt.wantSubject)
				}
			}
		})
	}
}

func TestChainStopsAfterDecision(t *testing.T) {
	first := &staticAuthenticator{result: Result{Decision: No, Err: ErrUnauthenticated}}
	second := &staticAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "x"}}}
	chain := &Chain{Authenticators: []Authenticator{first, second}}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	chain.Authenticate(context.Background(), req)

	if second.called != 0 {
		t.Error("chain evaluated an authenticator after a No decision")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{name: "valid bearer", header: "Bearer abc123", wantToken: "abc123", wantOK: true},
		{name: "empty bearer", header: "Bearer ", wantToken: "", wantOK: true},
		{name: "missing header", header: "", wantOK: false},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantOK: false},
		{name: "lowercase scheme", header: "bearer abc123", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, ok := BearerToken(req)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}
