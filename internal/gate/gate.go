// Package gate decides whether a student may enter an exam at a given
// moment. Evaluation runs server side against the stored exam password and
// the authoritative attempt counter; the client only ever receives the
// resulting decision.
package gate

import (
	"time"

	"github.com/examforge/exam-link-service/internal/models"
)

type Decision string

const (
	Granted                 Decision = "granted"
	DeniedExpired           Decision = "denied_expired"
	DeniedAttemptsExhausted Decision = "denied_attempts_exhausted"
	DeniedWrongPassword     Decision = "denied_wrong_password"
)

// Allowed reports whether the decision admits the student.
func (d Decision) Allowed() bool {
	return d == Granted
}

// Message returns the student-facing explanation for the decision. Each
// denial reads differently because the corrective action differs.
func (d Decision) Message() string {
	switch d {
	case Granted:
		return "access granted"
	case DeniedExpired:
		return "this exam has expired and no longer accepts submissions"
	case DeniedAttemptsExhausted:
		return "you have used all allowed attempts for this exam"
	case DeniedWrongPassword:
		return "incorrect exam password, please try again"
	default:
		return "access denied"
	}
}

// Evaluate applies the access checks in fixed order, first match wins:
// expiry, then attempt limit, then password. The password comparison is
// case-sensitive and byte-exact; no normalization is applied.
func Evaluate(p models.ExamLinkParameters, configuredPassword, suppliedPassword string, now time.Time, attemptsUsed int) Decision {
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return DeniedExpired
	}
	if p.MaxAttempts != nil && attemptsUsed >= *p.MaxAttempts {
		return DeniedAttemptsExhausted
	}
	if p.PasswordProtected && suppliedPassword != configuredPassword {
		return DeniedWrongPassword
	}
	return Granted
}
