package types

// ErrorKind identifies one entry of the bridge error taxonomy. The string
// values are part of the wire contract with the page and must stay stable.
type ErrorKind string

const (
	KindUnknownCommand        ErrorKind = "UnknownCommand"
	KindMalformedCommand      ErrorKind = "MalformedCommand"
	KindPermissionMissing     ErrorKind = "PermissionMissing"
	KindCapabilityUnavailable ErrorKind = "CapabilityUnavailable"
	KindPolicyBlocked         ErrorKind = "PolicyBlocked"
	KindProviderFailure       ErrorKind = "ProviderFailure"
	KindUnknownRequest        ErrorKind = "UnknownRequest"
	KindConflict              ErrorKind = "Conflict"
)

// CommandEnvelope is a decoded page command. RequestID must be unique among
// currently pending requests; Args are positional and ordered.
type CommandEnvelope struct {
	RequestID string        `json:"id"`
	Name      string        `json:"cmd"`
	Args      []interface{} `json:"args,omitempty"`
}

// ErrorInfo is the typed error half of a result envelope.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message,omitempty"`
}

// ResultEnvelope is the single result ever delivered for a request id.
type ResultEnvelope struct {
	RequestID string                 `json:"id"`
	Ok        bool                   `json:"ok"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *ErrorInfo             `json:"error,omitempty"`
}

// Outcome is a resolution produced by a provider or the gateway before it is
// addressed to a request id.
type Outcome struct {
	Ok   bool
	Data map[string]interface{}
	Err  *ErrorInfo
}

// Succeed builds a successful outcome carrying data. A nil map is a void
// success (ok with no data).
func Succeed(data map[string]interface{}) Outcome {
	return Outcome{Ok: true, Data: data}
}

// Fail builds a failed outcome with a taxonomy kind and message.
func Fail(kind ErrorKind, message string) Outcome {
	return Outcome{Err: &ErrorInfo{Kind: kind, Message: message}}
}

// Envelope addresses the outcome to a request id.
func (o Outcome) Envelope(requestID string) ResultEnvelope {
	return ResultEnvelope{
		RequestID: requestID,
		Ok:        o.Ok,
		Data:      o.Data,
		Error:     o.Err,
	}
}
