package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	closer := Setup(dir, "debug")
	t.Cleanup(Discard)

	log.Debugf("gate: decision %s", "downgrade")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(raw), "gate: decision downgrade") {
		t.Errorf("log file missing entry: %q", raw)
	}
}

func TestSetup_UnknownLevel(t *testing.T) {
	Setup(t.TempDir(), "chatty")
	t.Cleanup(Discard)

	if log.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}
}
