package statusline

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ChainTimeout bounds the chained status command.
const ChainTimeout = 5 * time.Second

// RunChain runs cmdline with stdin and returns its trimmed output. The
// command is split on whitespace and run without a shell. Any failure
// yields "".
func RunChain(ctx context.Context, cmdline string, stdin []byte) string {
	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, ChainTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = bytes.NewReader(stdin)
	out, err := cmd.Output()
	if err != nil {
		log.Debugf("statusline: chain %q: %v", args[0], err)
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Compose joins the chained output and the gate line. The gate line is
// always last.
func Compose(chained, line string) string {
	if chained == "" {
		return line
	}
	return chained + "\n" + line
}
