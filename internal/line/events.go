// Package line is a minimal client for the LINE Messaging and Login APIs:
// webhook signature validation, event payloads, the reply endpoint and the
// Login token exchange. Only the parts this service uses are modeled.
package line

const (
	EventTypeMessage = "message"
	EventTypeFollow  = "follow"

	MessageTypeText = "text"
)

type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type       string      `json:"type"`
	ReplyToken string      `json:"replyToken"`
	Timestamp  int64       `json:"timestamp"`
	Source     EventSource `json:"source"`
	Message    *Message    `json:"message,omitempty"`
}

type EventSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// IsTextMessage reports whether the event carries a text message.
func (e Event) IsTextMessage() bool {
	return e.Type == EventTypeMessage && e.Message != nil && e.Message.Type == MessageTypeText
}
