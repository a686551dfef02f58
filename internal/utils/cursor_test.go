package utils

import (
	"testing"
	"time"
)

func TestUserCursor_RoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	encoded, err := EncodeUserCursor(createdAt, "user-1")
	if err != nil {
		t.Fatalf("EncodeUserCursor error: %v", err)
	}

	c, err := DecodeUserCursor(encoded)
	if err != nil {
		t.Fatalf("DecodeUserCursor error: %v", err)
	}

	if !c.CreatedAt.Equal(createdAt) || c.ID != "user-1" {
		t.Fatalf("round trip mismatch: %+v", c)
	}
}

func TestDecodeUserCursor_Invalid(t *testing.T) {
	cases := []string{"", "not-base64!!", "aGVsbG8"}

	for _, cursor := range cases {
		if _, err := DecodeUserCursor(cursor); err == nil {
			t.Fatalf("expected error for cursor %q", cursor)
		}
	}
}
