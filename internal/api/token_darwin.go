//go:build darwin

package api

import "context"

// securityItemNotFound is the exit status of `security` when the keychain
// holds no item for the service.
const securityItemNotFound = 44

// getOAuthToken reads the credential JSON from the login keychain. A
// missing item falls through to the credential files.
func getOAuthToken(ctx context.Context) (string, error) {
	return commandSecret(ctx, securityItemNotFound,
		"security", "find-generic-password", "-s", keychainLabel, "-w")
}
