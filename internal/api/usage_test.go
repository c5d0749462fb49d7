package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func withUsageServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	origURL := UsageURL
	UsageURL = ts.URL
	t.Cleanup(func() { UsageURL = origURL })
}

func TestFetchUsage(t *testing.T) {
	withUsageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("anthropic-beta"); got != anthropicBeta {
			t.Errorf("anthropic-beta = %q", got)
		}
		w.Write([]byte(`{"five_hour":{"utilization":95,"resets_at":"2025-01-15T17:00:00Z"},"seven_day":{"utilization":40}}`))
	})

	data, err := FetchUsage(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("FetchUsage failed: %v", err)
	}
	if data.FiveHour.Utilization != 95 || data.SevenDay.Utilization != 40 {
		t.Errorf("got 5h=%v 7d=%v", data.FiveHour.Utilization, data.SevenDay.Utilization)
	}
	if data.FiveHour.ResetsAt != "2025-01-15T17:00:00Z" {
		t.Errorf("resets_at = %q", data.FiveHour.ResetsAt)
	}
	if time.Since(data.FetchedAt) > time.Minute {
		t.Errorf("FetchedAt not set: %v", data.FetchedAt)
	}
	if snap := data.Snapshot(); !snap.CachedAt.Equal(data.FetchedAt) {
		t.Errorf("snapshot CachedAt = %v, want %v", snap.CachedAt, data.FetchedAt)
	}
}

func TestFetchUsage_OneWindowOnly(t *testing.T) {
	withUsageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"five_hour":null,"seven_day":{"utilization":92}}`))
	})

	data, err := FetchUsage(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FetchUsage failed: %v", err)
	}
	if data.FiveHour.Utilization != 0 || data.SevenDay.Utilization != 92 {
		t.Errorf("got 5h=%v 7d=%v", data.FiveHour.Utilization, data.SevenDay.Utilization)
	}
}

func TestFetchUsage_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusInternalServerError, `{}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":"expired"}`},
		{"missing both windows", http.StatusOK, `{"other":1}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withUsageServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := FetchUsage(context.Background(), "tok")
			if !errors.Is(err, ErrFetchFailed) {
				t.Errorf("error = %v, want ErrFetchFailed", err)
			}
		})
	}
}

func TestFetchUsage_ContextCancelled(t *testing.T) {
	withUsageServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := FetchUsage(ctx, "tok"); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

func TestParseCredentialJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid credentials",
			input: `{"claudeAiOauth":{"accessToken":"test-token-123"}}`,
			want:  "test-token-123",
		},
		{
			name:    "empty access token",
			input:   `{"claudeAiOauth":{"accessToken":""}}`,
			wantErr: true,
		},
		{
			name:    "missing claudeAiOauth key",
			input:   `{"other":"data"}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `{invalid}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCredentialJSON(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q; want %q", got, tt.want)
			}
		})
	}
}

func stubSources(t *testing.T, store func(context.Context) (string, error), paths ...string) {
	t.Helper()
	origStore, origPaths := secretStoreToken, credentialPaths
	secretStoreToken = store
	credentialPaths = func() []string { return paths }
	t.Cleanup(func() {
		secretStoreToken = origStore
		credentialPaths = origPaths
	})
}

func failingStore(context.Context) (string, error) {
	return "", errors.New("locked")
}

func TestResolveToken_Order(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	good := filepath.Join(dir, "good.json")
	os.WriteFile(bad, []byte(`{broken`), 0o600)
	os.WriteFile(good, []byte(`{"claudeAiOauth":{"accessToken":"from-file"}}`), 0o600)

	t.Run("env wins", func(t *testing.T) {
		t.Setenv(TokenEnv, "from-env")
		stubSources(t, func(context.Context) (string, error) { return "from-store", nil }, good)
		if got, _ := ResolveToken(context.Background()); got != "from-env" {
			t.Errorf("got %q, want from-env", got)
		}
	})

	t.Run("secret store before files", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		stubSources(t, func(context.Context) (string, error) { return "from-store", nil }, good)
		if got, _ := ResolveToken(context.Background()); got != "from-store" {
			t.Errorf("got %q, want from-store", got)
		}
	})

	t.Run("falls through broken sources", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		stubSources(t, failingStore, filepath.Join(dir, "missing.json"), bad, good)
		got, err := ResolveToken(context.Background())
		if err != nil || got != "from-file" {
			t.Errorf("got %q, %v; want from-file", got, err)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		stubSources(t, failingStore, bad)
		if _, err := ResolveToken(context.Background()); !errors.Is(err, ErrNoCredential) {
			t.Errorf("error = %v, want ErrNoCredential", err)
		}
	})
}

func TestCommandSecret(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	ctx := context.Background()

	token, err := commandSecret(ctx, 44, "sh", "-c", `printf '%s\n' '{"claudeAiOauth":{"accessToken":"sk-shell"}}'`)
	if err != nil || token != "sk-shell" {
		t.Fatalf("got %q, %v", token, err)
	}

	notFound := []struct {
		name   string
		script string
	}{
		{"not found status", "exit 44"},
		{"empty output", "exit 0"},
	}
	for _, tt := range notFound {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commandSecret(ctx, 44, "sh", "-c", tt.script)
			if !errors.Is(err, errSecretNotFound) {
				t.Errorf("err = %v, want errSecretNotFound", err)
			}
		})
	}

	if _, err := commandSecret(ctx, 44, "sh", "-c", "exit 3"); err == nil || errors.Is(err, errSecretNotFound) {
		t.Errorf("other exit status: err = %v, want a lookup failure", err)
	}
	if _, err := commandSecret(ctx, 44, "/nonexistent/security"); err == nil || errors.Is(err, errSecretNotFound) {
		t.Errorf("missing tool: err = %v, want a lookup failure", err)
	}
}
