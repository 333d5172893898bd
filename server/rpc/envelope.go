package rpc

import (
	"encoding/json"
	"errors"

	contractx "github.com/obinna/neargent/agent/contract"
)

var errInvalidEnvelope = errors.New(`Invalid Request: jsonrpc must be "2.0" and id is required`)

// envelope is the JSON-RPC request body for an agent call.
type envelope struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Params  params `json:"params"`
}

type params struct {
	Message   *message `json:"message"`
	Messages  []message `json:"messages"`
	ContextID string   `json:"contextId"`
	TaskID    string   `json:"taskId"`
	Metadata  metadata `json:"metadata"`
}

type metadata struct {
	ResponseURL string `json:"response_url"`
}

type message struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Kind string          `json:"kind"`
	Text string          `json:"text"`
	Data json.RawMessage `json:"data"`
}

func (e envelope) validate() error {
	if e.JSONRPC != jsonrpcVersion || !hasRequestID(e.ID) {
		return errInvalidEnvelope
	}
	return nil
}

// hasRequestID mirrors the permissive JSON decode of id: strings must be
// non-empty and numbers non-zero to count as present.
func hasRequestID(id any) bool {
	switch v := id.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}

// turns builds the ordered conversation from either the single message or
// the message list. Each turn's content is the newline-joined concatenation
// of its parts: text parts contribute their literal text, data parts their
// JSON serialization, anything else the empty string.
func (p params) turns() []contractx.Turn {
	var msgs []message
	switch {
	case p.Message != nil:
		msgs = []message{*p.Message}
	case len(p.Messages) > 0:
		msgs = p.Messages
	}

	out := make([]contractx.Turn, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, contractx.Turn{
			Role:    msg.Role,
			Content: joinParts(msg.Parts),
		})
	}
	return out
}

func joinParts(parts []part) string {
	content := ""
	for i, p := range parts {
		if i > 0 {
			content += "\n"
		}
		content += renderPart(p)
	}
	return content
}

func renderPart(p part) string {
	switch p.Kind {
	case "text":
		return p.Text
	case "data":
		if len(p.Data) == 0 {
			return ""
		}
		return string(p.Data)
	default:
		return ""
	}
}
