package jobs

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncodeDecode_UserWelcome(t *testing.T) {
	payload := UserWelcomePayload{
		UserID:      "user-123",
		Email:       "a@x.com",
		RequestedAt: time.Now().UTC(),
	}

	b, err := EncodePayload(JobUserWelcome, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j, err := NewJob(JobUserWelcome, b)
	if err != nil {
		t.Fatalf("NewJob error: %v", err)
	}

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(UserWelcomePayload)
	if !ok {
		t.Fatalf("expected UserWelcomePayload, got %T", decoded)
	}

	if p.UserID != payload.UserID || p.Email != payload.Email {
		t.Fatalf("payload mismatch: %+v", p)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobUserWelcome, struct{ X int }{X: 1})
	if err != ErrPayloadTypeMismatch {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestNewJob_InvalidType(t *testing.T) {
	if _, err := NewJob(JobType("bogus"), nil); err != ErrInvalidJobType {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestValidatePayload_RequiredIDs(t *testing.T) {
	if err := ValidatePayload(JobUserWelcome, UserWelcomePayload{Email: "a@x.com"}); err == nil {
		t.Fatalf("expected error for missing userId")
	}
	if err := ValidatePayload(JobUserWelcome, UserWelcomePayload{UserID: "u1"}); err == nil {
		t.Fatalf("expected error for missing email")
	}
}

func TestJob_JSONRoundTrip(t *testing.T) {
	b, err := EncodePayload(JobUserWelcome, UserWelcomePayload{UserID: "u1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j, err := NewJob(JobUserWelcome, b)
	if err != nil {
		t.Fatalf("NewJob error: %v", err)
	}

	raw, err := json.Marshal(j)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}

	var back Job
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal job: %v", err)
	}

	if back.ID != j.ID || back.Type != j.Type || back.MaxTries != j.MaxTries {
		t.Fatalf("job mismatch: %+v vs %+v", back, j)
	}
}
