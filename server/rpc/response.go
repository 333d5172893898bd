package rpc

// JSON-RPC 2.0 error codes used by the bridge.
const (
	codeInvalidRequest = -32600
	codeAgentNotFound  = -32602
	codeInternalError  = -32603
)

const jsonrpcVersion = "2.0"

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type statusPart struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type statusMessage struct {
	Role  string       `json:"role"`
	Parts []statusPart `json:"parts"`
	Kind  string       `json:"kind"`
}

type taskStatus struct {
	State     string        `json:"state"`
	Timestamp string        `json:"timestamp"`
	Message   statusMessage `json:"message"`
}

type taskHandle struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    taskStatus `json:"status"`
}

// response is the single JSON-RPC response shape; exactly one of Result and
// Error is set, so both code paths serialize consistently.
type response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      any         `json:"id"`
	Result  *taskHandle `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

func successResponse(id any, handle taskHandle) response {
	return response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Result:  &handle,
	}
}

func errorResponse(id any, code int, message string, data any) response {
	return response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Error: &rpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
