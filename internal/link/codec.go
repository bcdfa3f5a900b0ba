// Package link encodes exam access parameters into a shareable URL and
// decodes them back. The codec is a pure leaf: it needs no storage and no
// server-side secret, which also means everything in the link is visible to
// the student who holds it.
package link

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/examforge/exam-link-service/internal/models"
)

// Query parameter names carried by a share link.
const (
	paramID       = "id"
	paramTitle    = "title"
	paramSecure   = "secure"
	paramExpires  = "expires"
	paramAttempts = "attempts"
)

// ErrMalformedLink is returned when a link is missing the required exam id.
var ErrMalformedLink = errors.New("exam link is missing required id parameter")

// Encode builds the shareable exam URL from baseURL and the link parameters.
// Timestamps are truncated to whole seconds so that Decode(Encode(p))
// reproduces p exactly.
func Encode(p models.ExamLinkParameters, baseURL string) string {
	q := url.Values{}
	q.Set(paramID, p.ExamID)
	q.Set(paramTitle, p.Title)

	if p.PasswordProtected {
		q.Set(paramSecure, "true")
	}
	if p.ExpiresAt != nil {
		q.Set(paramExpires, p.ExpiresAt.UTC().Truncate(time.Second).Format(time.RFC3339))
	}
	if p.MaxAttempts != nil {
		q.Set(paramAttempts, strconv.Itoa(*p.MaxAttempts))
	}

	return strings.TrimSuffix(baseURL, "/") + "/exam?" + q.Encode()
}

// Decode is the inverse of Encode. Optional parameters may be absent; a
// missing id yields ErrMalformedLink. Unknown parameters are ignored.
func Decode(q url.Values) (models.ExamLinkParameters, error) {
	id := q.Get(paramID)
	if id == "" {
		return models.ExamLinkParameters{}, ErrMalformedLink
	}

	p := models.ExamLinkParameters{
		ExamID:            id,
		Title:             q.Get(paramTitle),
		PasswordProtected: q.Get(paramSecure) == "true",
	}

	if raw := q.Get(paramExpires); raw != "" {
		expires, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.ExamLinkParameters{}, fmt.Errorf("invalid expires parameter %q: %w", raw, err)
		}
		expires = expires.UTC().Truncate(time.Second)
		p.ExpiresAt = &expires
	}

	if raw := q.Get(paramAttempts); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil || attempts < 1 {
			return models.ExamLinkParameters{}, fmt.Errorf("invalid attempts parameter %q", raw)
		}
		p.MaxAttempts = &attempts
	}

	return p, nil
}

// DecodeURL decodes a full share link as produced by Encode.
func DecodeURL(raw string) (models.ExamLinkParameters, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return models.ExamLinkParameters{}, fmt.Errorf("invalid exam link: %w", err)
	}
	return Decode(u.Query())
}
