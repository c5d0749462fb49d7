// Package hook adapts gate decisions to the host's PreToolUse protocol.
//
// Every failure on this path allows the dispatch: a broken gate must never
// stop the user's work.
package hook

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/jung-wan-kim/usage-gate/internal/gate"
	"github.com/jung-wan-kim/usage-gate/internal/i18n"
	log "github.com/sirupsen/logrus"
)

// SnapshotReader supplies the cached usage. *cache.Store satisfies it.
type SnapshotReader interface {
	Read() (*domain.Snapshot, bool)
}

// Gate evaluates PreToolUse payloads against the cached snapshot. It never
// touches the network.
type Gate struct {
	Snapshots SnapshotReader
	Limits    domain.Limits
	Mode      domain.Mode
	Catalog   i18n.Catalog
	// Tools limits the gate to these tool names. Empty inspects every
	// payload.
	Tools []string
}

// inspects reports whether the payload's tool is subject to the gate. A
// payload without a tool name is always inspected.
func (g Gate) inspects(tool string) bool {
	if tool == "" || len(g.Tools) == 0 {
		return true
	}
	for _, t := range g.Tools {
		if strings.EqualFold(strings.TrimSpace(t), tool) {
			return true
		}
	}
	return false
}

// Evaluate turns one raw payload into the hook's output.
func (g Gate) Evaluate(raw []byte) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("hook: recovered: %v", r)
			res = allowResult()
		}
	}()

	p, err := ParsePayload(raw)
	if err != nil {
		log.Debugf("hook: %v", err)
		return allowResult()
	}
	if !g.inspects(p.ToolName) || !g.Limits.Enabled {
		return allowResult()
	}

	var snap *domain.Snapshot
	if g.Snapshots != nil {
		snap, _ = g.Snapshots.Read()
	}

	d := gate.Decide(snap, g.Limits, p.Request()).ForMode(g.Mode)
	if !d.Allowed() {
		log.Infof("hook: %s %q -> %s (%s, trigger %s)", d.Kind, p.Model(), d.Model, d.Reason, d.Trigger)
	}
	return NewEnforcer(g.Mode, g.Catalog).Enforce(d, p)
}

// Run reads the payload from in, writes the result and returns the exit
// code for the process.
func (g Gate) Run(in io.Reader, stdout, stderr io.Writer) int {
	var raw []byte
	if in != nil {
		var err error
		raw, err = io.ReadAll(in)
		if err != nil {
			log.Debugf("hook: read stdin: %v", err)
			return ExitAllow
		}
	}

	res := g.Evaluate(raw)
	if len(res.Stdout) > 0 {
		fmt.Fprintln(stdout, string(res.Stdout))
	}
	if res.Stderr != "" {
		fmt.Fprint(stderr, res.Stderr)
	}
	return res.ExitCode
}
