//go:build !darwin && !linux && !windows

package api

import (
	"context"
	"errors"
)

func getOAuthToken(context.Context) (string, error) {
	return "", errors.New("no secret store support on this platform")
}
