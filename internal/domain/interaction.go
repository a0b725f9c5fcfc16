package domain

import "time"

// Interaction statuses. A donation hand-off moves pending -> confirmed -> completed.
const (
	InteractionPending   = "pending"
	InteractionConfirmed = "confirmed"
	InteractionCompleted = "completed"
)

// Interaction records a donation hand-off between the donor and the recipient
// of a post.
type Interaction struct {
	InteractionID string     `json:"id" dynamodbav:"interaction_id"`
	PostID        string     `json:"postId" dynamodbav:"post_id"`
	DonorID       string     `json:"donorId" dynamodbav:"donor_id"`
	RecipientID   string     `json:"recipientId" dynamodbav:"recipient_id"`
	Status        string     `json:"status" dynamodbav:"status"`
	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty" dynamodbav:"confirmed_at"`
	CreatedAt     time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}
