package chat

import "time"

// Payload relays one chat message to the external processor. UserID is the
// verified caller identity; the request body never carries one.
type Payload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

func BuildPayload(sessionID, message, userID string, at time.Time) Payload {
	return Payload{
		SessionID: sessionID,
		Message:   message,
		UserID:    userID,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}
