package model

// Notification is a single digest email ready to send: one subject/body
// pair covering every qualifying event from one source category. It is
// constructed per run and never persisted.
type Notification struct {
	// Subject is the email subject line.
	Subject string `json:"subject"`

	// Body is the rendered plain-text email body.
	Body string `json:"body"`
}
