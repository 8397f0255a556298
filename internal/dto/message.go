package dto

// SendMessageRequest targets one participant.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Body        string `json:"body" validate:"required,max=10000"`
}

// BroadcastRequest addresses every participant.
type BroadcastRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=10000"`
}
