package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSignAndParseRoundTrip(t *testing.T) {
	actor := Actor{
		ID:     uuid.New(),
		Role:   RoleDoctor,
		Status: StatusApproved,
		Name:   "Dr. Gregory House",
	}

	token, err := Sign(actor, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	parsed, err := Parse(token, "test-secret")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != actor {
		t.Fatalf("expected %+v, got %+v", actor, parsed)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := Sign(Actor{ID: uuid.New(), Role: RolePatient, Status: StatusApproved}, "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := Parse(token, "secret-b"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := Sign(Actor{ID: uuid.New(), Role: RolePatient, Status: StatusApproved}, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := Parse(token, "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-token", "secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignRequiresSecret(t *testing.T) {
	if _, err := Sign(Actor{ID: uuid.New(), Role: RolePatient}, "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestActorFromContext(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleAdmin, Status: StatusApproved}
	ctx := WithActor(context.Background(), actor)

	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor in context")
	}
	if got != actor {
		t.Fatalf("expected %+v, got %+v", actor, got)
	}

	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatal("expected no actor in empty context")
	}
}
