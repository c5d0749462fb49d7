//go:build linux

package api

import "context"

// secretToolNotFound is the exit status of `secret-tool lookup` when no
// secret matches.
const secretToolNotFound = 1

// getOAuthToken reads the credential JSON from the Linux secret store via
// libsecret (gnome-keyring / kwallet). Missing secret-tool is not fatal:
// the credential files are tried next.
func getOAuthToken(ctx context.Context) (string, error) {
	return commandSecret(ctx, secretToolNotFound,
		"secret-tool", "lookup", "service", keychainLabel)
}
