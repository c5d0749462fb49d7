package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// TokenEnv overrides every other credential source.
const TokenEnv = "ANTHROPIC_ACCESS_TOKEN"

// ErrNoCredential means no source produced an access token.
var ErrNoCredential = errors.New("no oauth credential found")

// errSecretNotFound means the OS secret store has no entry for the label.
var errSecretNotFound = errors.New("no entry in secret store")

// Package-level hooks so tests can replace the OS secret store and the
// credential file locations.
var (
	secretStoreToken = getOAuthToken
	credentialPaths  = defaultCredentialPaths
)

// ResolveToken finds an OAuth access token: environment first, then the OS
// secret store, then credential files. A failing source falls through to the
// next one.
func ResolveToken(ctx context.Context) (string, error) {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		return token, nil
	}

	token, err := secretStoreToken(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, errSecretNotFound) {
		log.Debugf("api: secret store: %v", err)
	}

	for _, p := range credentialPaths() {
		token, err := readCredentialFile(p)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			log.Debugf("api: credential file %s: %v", p, err)
		}
	}
	return "", ErrNoCredential
}

func defaultCredentialPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".claude", ".credentials.json"),
		filepath.Join(home, ".claude", "credentials.json"),
		filepath.Join(home, ".config", "claude", "credentials.json"),
	}
}

func readCredentialFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return parseCredentialJSON(string(raw))
}

// commandSecret runs a secret-store CLI and parses the credential JSON it
// prints. notFound is the exit status the tool uses for a missing entry;
// that status and empty output both map to errSecretNotFound.
func commandSecret(ctx context.Context, notFound int, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr) && exitErr.ExitCode() == notFound:
		return "", fmt.Errorf("%s: %w", name, errSecretNotFound)
	case err != nil:
		return "", fmt.Errorf("%s lookup failed: %w", name, err)
	}
	raw := strings.TrimSpace(string(out))
	if raw == "" {
		return "", fmt.Errorf("%s: %w", name, errSecretNotFound)
	}
	return parseCredentialJSON(raw)
}

// parseCredentialJSON extracts the OAuth access token from Claude Code's
// credential JSON stored in the system credential store.
func parseCredentialJSON(raw string) (string, error) {
	var creds struct {
		ClaudeAiOauth struct {
			AccessToken string `json:"accessToken"`
		} `json:"claudeAiOauth"`
	}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return "", fmt.Errorf("parse credentials: %w", err)
	}
	if creds.ClaudeAiOauth.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return creds.ClaudeAiOauth.AccessToken, nil
}
