package optimizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
)

var (
	// ErrTransport marks failures to reach the service or read its response.
	ErrTransport = errors.New("optimizer service unreachable")

	// ErrDecode marks a 2xx response whose body is not a valid result.
	ErrDecode = errors.New("malformed optimizer response")
)

// APIError is a non-2xx response from the service. Message is the service's own
// message when it supplied one, otherwise the fallback message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("optimizer returned status %d: %s", e.StatusCode, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: constants.FallbackErrorMessage}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}
	if msg := strings.TrimSpace(parsed.Error); msg != "" {
		apiErr.Message = parsed.Error
	}
	return apiErr
}

// UserMessage returns the text a user should see for a failed calculation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return constants.GenericErrorMessage
}
