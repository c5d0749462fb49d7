package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	keychainLabel  = "Claude Code-credentials"
	anthropicBeta  = "oauth-2025-04-20"
	userAgent      = "usage-gate/1.0"
	RequestTimeout = 5 * time.Second

	// maxBodySize bounds how much of the response we read.
	maxBodySize = 1 << 20
)

// UsageURL is the OAuth usage endpoint. Exported so tests can point it at
// an httptest server.
var UsageURL = "https://api.anthropic.com/api/oauth/usage"

// ErrFetchFailed wraps every failure of the remote usage query.
var ErrFetchFailed = errors.New("usage fetch failed")

var httpClient = &http.Client{Timeout: RequestTimeout}

// UsageData holds the parsed API response.
type UsageData struct {
	FiveHour  domain.Window
	SevenDay  domain.Window
	FetchedAt time.Time
}

// Snapshot converts the response into a cache snapshot stamped at FetchedAt.
func (u UsageData) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		FiveHour: u.FiveHour,
		SevenDay: u.SevenDay,
		CachedAt: u.FetchedAt,
	}
}

// FetchUsage retrieves current usage data with the given bearer token. The
// call is bounded by RequestTimeout on top of ctx.
func FetchUsage(ctx context.Context, token string) (*UsageData, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, UsageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("anthropic-beta", anthropicBeta)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: api request: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: api returned status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrFetchFailed, err)
	}
	data, err := parseUsage(body)
	if err != nil {
		return nil, err
	}
	data.FetchedAt = time.Now()
	return data, nil
}

// parseUsage accepts a body carrying at least one of five_hour and
// seven_day. A missing window is kept as the zero window.
func parseUsage(body []byte) (*UsageData, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrFetchFailed)
	}
	fiveHour := gjson.GetBytes(body, "five_hour")
	sevenDay := gjson.GetBytes(body, "seven_day")
	if !fiveHour.IsObject() && !sevenDay.IsObject() {
		return nil, fmt.Errorf("%w: response has neither five_hour nor seven_day", ErrFetchFailed)
	}
	return &UsageData{
		FiveHour: domain.ParseWindow([]byte(fiveHour.Raw)),
		SevenDay: domain.ParseWindow([]byte(sevenDay.Raw)),
	}, nil
}
