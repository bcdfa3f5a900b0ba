package models

import "time"

// ExamLinkParameters is the full set of access parameters embedded in a
// shareable exam link. Produced once at publish time, immutable afterwards.
// Decoding the link needs no server-side secret; the password itself never
// travels in the link, only the secure flag does.
type ExamLinkParameters struct {
	ExamID            string     `json:"exam_id"`
	Title             string     `json:"title"`
	PasswordProtected bool       `json:"password_protected"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	MaxAttempts       *int       `json:"max_attempts,omitempty"`
}
