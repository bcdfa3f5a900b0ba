package link

import (
	"net/url"
	"testing"
	"time"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func TestEncodeDecode_RoundTrip(t *testing.T) {
	expires := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	tests := []struct {
		name   string
		params models.ExamLinkParameters
	}{
		{
			name: "all fields set",
			params: models.ExamLinkParameters{
				ExamID:            "k3j2h1g4f5d6",
				Title:             "Midterm Biology",
				PasswordProtected: true,
				ExpiresAt:         timePtr(expires),
				MaxAttempts:       intPtr(3),
			},
		},
		{
			name: "minimal link",
			params: models.ExamLinkParameters{
				ExamID: "abc123",
				Title:  "Quick Quiz",
			},
		},
		{
			name: "title with reserved url characters",
			params: models.ExamLinkParameters{
				ExamID:      "x1",
				Title:       "Algebra & Geometry: 50% off? #1 exam/test",
				ExpiresAt:   timePtr(expires),
				MaxAttempts: intPtr(1),
			},
		},
		{
			name: "expiry without attempt limit",
			params: models.ExamLinkParameters{
				ExamID:            "x2",
				Title:             "History",
				PasswordProtected: true,
				ExpiresAt:         timePtr(expires),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Encode(tt.params, "https://exams.example.com")

			decoded, err := DecodeURL(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.params, decoded)
		})
	}
}

func TestEncode_SubSecondTruncation(t *testing.T) {
	expires := time.Date(2026, 3, 14, 15, 9, 26, 789000000, time.UTC)
	params := models.ExamLinkParameters{
		ExamID:    "e1",
		Title:     "Physics",
		ExpiresAt: &expires,
	}

	decoded, err := DecodeURL(Encode(params, "https://exams.example.com"))
	require.NoError(t, err)
	require.NotNil(t, decoded.ExpiresAt)
	assert.True(t, decoded.ExpiresAt.Equal(expires.Truncate(time.Second)))
}

func TestEncode_OmitsUnsetOptionalFields(t *testing.T) {
	raw := Encode(models.ExamLinkParameters{ExamID: "e1", Title: "T"}, "https://exams.example.com/")

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "e1", q.Get("id"))
	assert.False(t, q.Has("secure"))
	assert.False(t, q.Has("expires"))
	assert.False(t, q.Has("attempts"))
}

func TestDecode_MissingID(t *testing.T) {
	q := url.Values{}
	q.Set("title", "No ID Exam")
	q.Set("secure", "true")

	_, err := Decode(q)
	assert.ErrorIs(t, err, ErrMalformedLink)
}

func TestDecode_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"garbage expires", "expires", "tomorrow-ish"},
		{"non-numeric attempts", "attempts", "lots"},
		{"zero attempts", "attempts", "0"},
		{"negative attempts", "attempts", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{}
			q.Set("id", "e1")
			q.Set(tt.key, tt.value)

			_, err := Decode(q)
			assert.Error(t, err)
		})
	}
}

func TestEncode_BaseURLTrailingSlash(t *testing.T) {
	params := models.ExamLinkParameters{ExamID: "e1", Title: "T"}

	withSlash := Encode(params, "https://exams.example.com/")
	withoutSlash := Encode(params, "https://exams.example.com")
	assert.Equal(t, withoutSlash, withSlash)
}
