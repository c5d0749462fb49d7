//go:build windows

package api

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	advapi32           = windows.NewLazySystemDLL("advapi32.dll")
	procCredEnumerateW = advapi32.NewProc("CredEnumerateW")
	procCredFree       = advapi32.NewProc("CredFree")
)

// sysCredential mirrors Windows CREDENTIAL struct layout.
// https://learn.microsoft.com/en-us/windows/win32/api/wincred/ns-wincred-credentialw
type sysCredential struct {
	Flags              uint32
	Type               uint32
	TargetName         *uint16
	Comment            *uint16
	LastWritten        windows.Filetime
	CredentialBlobSize uint32
	CredentialBlob     uintptr
	Persist            uint32
	AttributeCount     uint32
	Attributes         uintptr
	TargetAlias        *uint16
	UserName           *uint16
}

// getOAuthToken reads the Claude Code OAuth token from Windows Credential
// Manager. The call is local and does not block, so ctx is only checked
// up front.
func getOAuthToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	filter, err := windows.UTF16PtrFromString(keychainLabel + "*")
	if err != nil {
		return "", fmt.Errorf("invalid filter: %w", err)
	}
	if err := procCredEnumerateW.Find(); err != nil {
		return "", fmt.Errorf("credential manager unavailable: %w", err)
	}

	var count uint32
	var creds uintptr
	ret, _, _ := procCredEnumerateW.Call(
		uintptr(unsafe.Pointer(filter)),
		0,
		uintptr(unsafe.Pointer(&count)),
		uintptr(unsafe.Pointer(&creds)),
	)
	if ret == 0 || count == 0 {
		return "", fmt.Errorf("no credentials found for %q in Windows Credential Manager", keychainLabel)
	}
	defer procCredFree.Call(creds)

	ptrs := unsafe.Slice((**sysCredential)(unsafe.Pointer(creds)), count)
	for _, cred := range ptrs {
		if cred.CredentialBlobSize == 0 {
			continue
		}
		blob := unsafe.Slice((*byte)(unsafe.Pointer(cred.CredentialBlob)), cred.CredentialBlobSize)
		token, err := parseCredentialJSON(string(blob))
		if err == nil {
			return token, nil
		}
	}
	return "", fmt.Errorf("no valid OAuth token found in Windows Credential Manager")
}
