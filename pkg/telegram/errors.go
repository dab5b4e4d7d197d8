package telegram

import (
	"encoding/json"
	"fmt"
)

// APIError is a Bot API failure response. Code and Description carry
// the server's error_code and description verbatim; RetryAfter is the
// optional parameters.retry_after hint. The retry policy keys off this
// exact shape, so any replacement client must preserve it.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// apiResponse is the wire envelope of every Bot API reply.
type apiResponse struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *responseParameters `json:"parameters,omitempty"`
}

type responseParameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}
