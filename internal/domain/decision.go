package domain

import "strings"

// PendingRequest is the part of a task dispatch the gate looks at.
type PendingRequest struct {
	Tool  string
	Model string // explicit model override, empty when the caller set none
}

type Kind int

const (
	Allow Kind = iota
	Downgrade
	Block
)

func (k Kind) String() string {
	switch k {
	case Downgrade:
		return "downgrade"
	case Block:
		return "block"
	default:
		return "allow"
	}
}

// Trigger names the window(s) whose limit fired.
type Trigger string

const (
	TriggerNone Trigger = ""
	Trigger5h   Trigger = "5h"
	Trigger7d   Trigger = "7d"
	TriggerBoth Trigger = "5h+7d"
)

// Decision is the outcome of one gate evaluation.
type Decision struct {
	Kind    Kind
	Model   string
	Reason  string
	Trigger Trigger
}

// Mode selects how a downgrade is enforced.
type Mode string

const (
	ModeTransparent Mode = "transparent"
	ModeBlock       Mode = "block"
)

// ParseMode accepts a few spellings and reports whether s was recognized.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transparent", "rewrite", "auto":
		return ModeTransparent, true
	case "block", "blocking", "deny":
		return ModeBlock, true
	}
	return ModeTransparent, false
}

func AllowDecision() Decision {
	return Decision{Kind: Allow}
}

// ForMode maps a downgrade onto the given enforcement mode. In blocking mode
// the same model and reason are carried as a Block.
func (d Decision) ForMode(mode Mode) Decision {
	if d.Kind == Downgrade && mode == ModeBlock {
		d.Kind = Block
	}
	return d
}

func (d Decision) Allowed() bool {
	return d.Kind == Allow
}
