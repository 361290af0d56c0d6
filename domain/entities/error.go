package entities

import "fmt"

// ErrorDetail provides structured error information, consistent between the
// build pipeline's reports and the runtime's result frames.
// Error types: "signature", "duplicate", "marshal", "fault", "internal".
type ErrorDetail struct {
	Message  string `json:"message"`
	Type     string `json:"type"`
	Code     string `json:"code,omitempty"`
	Function string `json:"function,omitempty"`
	Location string `json:"location,omitempty"`
}

// Error implements the error interface for ErrorDetail.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	return msg
}
