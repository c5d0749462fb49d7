package hook

import (
	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/jung-wan-kim/usage-gate/internal/i18n"
	"github.com/tidwall/sjson"
)

// Exit codes understood by the host.
const (
	ExitAllow = 0
	ExitBlock = 2
)

// Result is what the hook process writes and how it exits.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
}

func allowResult() Result {
	return Result{ExitCode: ExitAllow}
}

// Enforcer applies a gate decision to one PreToolUse payload.
type Enforcer interface {
	Enforce(d domain.Decision, p *Payload) Result
}

// NewEnforcer picks the strategy for mode. Language only changes messages.
func NewEnforcer(mode domain.Mode, cat i18n.Catalog) Enforcer {
	if mode == domain.ModeBlock {
		return Blocking{cat: cat}
	}
	return Transparent{cat: cat}
}

// Transparent rewrites tool_input.model and lets the dispatch proceed.
type Transparent struct {
	cat i18n.Catalog
}

func (t Transparent) Enforce(d domain.Decision, p *Payload) Result {
	if d.Kind == domain.Allow || p == nil {
		return allowResult()
	}

	updated, err := sjson.SetBytes(p.ToolInput, "model", d.Model)
	if err != nil {
		return allowResult()
	}

	out, err := rewriteOutput(updated, t.cat.Tf("rewrite_reason", d.Reason, d.Model))
	if err != nil {
		return allowResult()
	}
	return Result{ExitCode: ExitAllow, Stdout: out}
}

// rewriteOutput builds the hookSpecificOutput envelope around the updated
// tool input.
func rewriteOutput(updatedInput []byte, reason string) ([]byte, error) {
	out := []byte(`{}`)
	fields := []struct {
		path  string
		value string
	}{
		{"hookSpecificOutput.hookEventName", "PreToolUse"},
		{"hookSpecificOutput.permissionDecision", "allow"},
		{"hookSpecificOutput.permissionDecisionReason", reason},
	}
	var err error
	for _, f := range fields {
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return sjson.SetRawBytes(out, "hookSpecificOutput.updatedInput", updatedInput)
}

// Blocking rejects the dispatch and tells the caller which model to retry
// with. The retry names a cheap model, so the gate allows it.
type Blocking struct {
	cat i18n.Catalog
}

func (b Blocking) Enforce(d domain.Decision, p *Payload) Result {
	if d.Kind == domain.Allow {
		return allowResult()
	}
	return Result{
		ExitCode: ExitBlock,
		Stderr:   b.cat.Tf("block_retry", d.Reason, d.Model) + "\n",
	}
}
