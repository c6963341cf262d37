package message

import "time"

const (
	TypeText  = "text"
	TypeImage = "image"
)

// Message is a conversation row enriched with the sender's and
// receiver's username and display name at read time. Exactly one of
// Content and ImageURL is populated, matching Type.
type Message struct {
	ID                  int       `json:"id"`
	SenderID            int       `json:"sender_id"`
	ReceiverID          int       `json:"receiver_id"`
	Content             string    `json:"content,omitempty"`
	ImageURL            string    `json:"image_url,omitempty"`
	Type                string    `json:"type"`
	CreatedAt           time.Time `json:"created_at"`
	SenderUsername      string    `json:"sender_username"`
	SenderDisplayName   string    `json:"sender_display_name"`
	ReceiverUsername    string    `json:"receiver_username"`
	ReceiverDisplayName string    `json:"receiver_display_name"`
}

type SendRequest struct {
	ReceiverID int    `json:"receiverId"`
	Content    string `json:"content"`
}
