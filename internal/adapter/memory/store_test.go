package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trackseed/internal/adapter/memory"
	"trackseed/internal/domain"
	"trackseed/internal/schema"
)

func TestInsertAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.Insert(ctx, "users", schema.Document{
		"username":          "jdoe",
		"email":             "jdoe@example.com",
		"password":          "pw",
		"first_name":        "John",
		"last_name":         "Doe",
		schema.CreatedAtKey: now,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ids, err := s.IDs(ctx, "users")
	if err != nil || len(ids) != 1 || ids[0] != id {
		t.Fatalf("IDs = %v, %v; want [%s]", ids, err, id.Hex())
	}
	n, _ := s.Count(ctx, "users")
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	if n, _ := s.Count(ctx, "projects"); n != 0 {
		t.Errorf("Count(projects) = %d, want 0", n)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || users[0].Email != "jdoe@example.com" || !users[0].CreatedAt.Equal(now) {
		t.Errorf("Users = %+v", users)
	}
	if missing := users[0].MissingFields(); len(missing) != 0 {
		t.Errorf("MissingFields = %v", missing)
	}
}

func TestInsertCopiesDocument(t *testing.T) {
	s := memory.New()
	doc := schema.Document{"name": "Acme"}
	if _, err := s.Insert(context.Background(), "projects", doc); err != nil {
		t.Fatal(err)
	}
	doc["name"] = "changed"
	if got := s.Documents("projects")[0]["name"]; got != "Acme" {
		t.Errorf("stored name = %v, want Acme", got)
	}
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(ctx, "users", schema.Document{}); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Insert err = %v, want ErrNotConnected", err)
	}
	if _, err := s.Users(ctx); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Users err = %v, want ErrNotConnected", err)
	}
	if s.Inserts() != 0 {
		t.Errorf("Inserts = %d, want 0", s.Inserts())
	}
}

func TestInsertHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := memory.New().Insert(ctx, "users", schema.Document{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
