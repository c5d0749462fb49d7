package hook

import (
	"errors"

	"github.com/jung-wan-kim/usage-gate/internal/domain"
	"github.com/tidwall/gjson"
)

var errInvalidPayload = errors.New("hook payload is not a JSON object")

// Payload is the PreToolUse hook input.
type Payload struct {
	EventName string
	ToolName  string
	// ToolInput is the raw tool_input object, "{}" when absent.
	ToolInput []byte
}

// ParsePayload reads the fields the gate needs and keeps tool_input raw so
// it can be echoed back untouched apart from the model.
func ParsePayload(raw []byte) (*Payload, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errInvalidPayload
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, errInvalidPayload
	}

	p := &Payload{
		EventName: root.Get("hook_event_name").String(),
		ToolName:  root.Get("tool_name").String(),
		ToolInput: []byte("{}"),
	}
	if in := root.Get("tool_input"); in.IsObject() {
		p.ToolInput = []byte(in.Raw)
	}
	return p, nil
}

// Model returns the explicit model override, empty when none is set.
func (p *Payload) Model() string {
	return gjson.GetBytes(p.ToolInput, "model").String()
}

func (p *Payload) Request() domain.PendingRequest {
	return domain.PendingRequest{
		Tool:  p.ToolName,
		Model: p.Model(),
	}
}
