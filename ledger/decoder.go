package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-userops/core"
)

// TransportError is the structured failure shape raised by the bundler
// transport. Details carries a stringified JSON payload with the revert
// data; anything else arriving at the decoder is treated as opaque.
type TransportError struct {
	Code    int
	Message string
	Details string
}

func (e *TransportError) Error() string {
	if e == nil {
		return "ledger: transport error"
	}
	return fmt.Sprintf("ledger: transport error %d: %s", e.Code, e.Message)
}

type ErrorDecoder struct {
	table *ErrorTable
}

func NewErrorDecoder(table *ErrorTable) *ErrorDecoder {
	if table == nil {
		table = DefaultErrorTable()
	}
	return &ErrorDecoder{table: table}
}

// Decode turns a caught submission error into a typed failure. Every
// stage degrades to an inspectable value; no stage panics or rethrows.
func (d *ErrorDecoder) Decode(err error) core.OperationFailure {
	if err == nil {
		return core.OperationFailure{Kind: core.FailureUnexpected}
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return core.OperationFailure{Kind: core.FailureUnexpected, Raw: err.Error()}
	}

	payload, ok := parseRevertDetails(transportErr.Details)
	if !ok {
		return core.OperationFailure{Kind: core.FailureDecode, Raw: transportErr.Details}
	}

	name, ok := d.lookup(payload.Data.RevertData)
	if !ok {
		return core.OperationFailure{Kind: core.FailureDecode, Raw: payload.Data.RevertData}
	}

	messages := []string{}
	if strings.TrimSpace(payload.Message) != "" {
		messages = append(messages, payload.Message)
	}
	return core.OperationFailure{
		Kind:     core.FailureRevertDecoded,
		Name:     name,
		Messages: messages,
	}
}

func (d *ErrorDecoder) lookup(revertData string) (string, bool) {
	if d == nil || d.table == nil {
		return "", false
	}
	return d.table.Lookup(revertData)
}

// revertDetailPayload is the expected shape of the stringified JSON
// inside TransportError.Details.
type revertDetailPayload struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
	Data    struct {
		RevertData string `json:"revertData"`
	} `json:"data"`
}

// parseRevertDetails runs the two-stage decode: string -> JSON, then
// JSON -> shape. Either failure reports false instead of an error so the
// caller can fall back to the raw payload.
func parseRevertDetails(details string) (revertDetailPayload, bool) {
	payload := revertDetailPayload{}
	if strings.TrimSpace(details) == "" {
		return revertDetailPayload{}, false
	}
	if err := json.Unmarshal([]byte(details), &payload); err != nil {
		return revertDetailPayload{}, false
	}
	if payload.Code == nil {
		return revertDetailPayload{}, false
	}
	if err := core.ValidateHexString(payload.Data.RevertData); err != nil {
		return revertDetailPayload{}, false
	}
	return payload, true
}
