package gateway

import (
	"encoding/json"
)

// envelope is the wrapper every backend response is expected to use.
type envelope struct {
	Code    int             `json:"code"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// decodeEnvelope parses the body text into the envelope and, on an
// application-level success, into out. The body is treated as opaque text
// first so a non-JSON payload maps to MalformedResponse instead of
// escaping as a raw decode fault.
func decodeEnvelope(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return newError(MalformedResponse, "response body is not a valid envelope", err)
	}

	if env.Code != 200 || len(env.Result) == 0 {
		message := env.Message
		if message == "" {
			message = "backend rejected the request"
		}
		return newError(ServerRejected, message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return newError(MalformedResponse, "envelope result has unexpected shape", err)
	}
	return nil
}
