package domain

// EmailVerification tracks one in-flight signup code per email address.
// PK: email (normalized). ExpiresAt is a Unix timestamp also used as the
// DynamoDB TTL attribute; the service's explicit expiry check is authoritative,
// TTL cleanup is housekeeping only.
//
// Only the code's hash is ever persisted.
type EmailVerification struct {
	Email      string `json:"email" dynamodbav:"email"`
	CodeHash   string `json:"-" dynamodbav:"code_hash"`
	ExpiresAt  int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	Attempts   int    `json:"attempts" dynamodbav:"attempts"`
	Resends    int    `json:"resends" dynamodbav:"resends"`
	LastSentAt int64  `json:"last_sent_at" dynamodbav:"last_sent_at"` // Unix seconds
}
