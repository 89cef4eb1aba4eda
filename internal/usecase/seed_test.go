package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"trackseed/internal/adapter/faker"
	"trackseed/internal/adapter/memory"
	"trackseed/internal/domain"
	"trackseed/internal/schema"
	"trackseed/internal/usecase"
)

// scripted returns queued values per hint, repeating the last one when the
// queue runs dry, and falls back to a seeded faker for other hints.
type scripted struct {
	queue    map[schema.Hint][]any
	fallback *faker.Generator
}

func (s *scripted) Value(h schema.Hint) (any, error) {
	q := s.queue[h]
	switch len(q) {
	case 0:
		return s.fallback.Value(h)
	case 1:
		return q[0], nil
	}
	s.queue[h] = q[1:]
	return q[0], nil
}

func (s *scripted) Intn(n int) int { return s.fallback.Intn(n) }

func newUseCase(store *memory.Store, gen interface {
	Value(schema.Hint) (any, error)
	Intn(int) int
}) *usecase.SeedUseCase {
	return &usecase.SeedUseCase{
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:     store,
		Generator: gen,
		Registry:  schema.Default(),
		Now:       func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) },
	}
}

func TestSeedFourUsersWithUniqueEmails(t *testing.T) {
	store := memory.New()
	uc := newUseCase(store, faker.New(2024))

	res, err := uc.Run(context.Background(), schema.UserEntity, usecase.Options{
		Count:        4,
		UniqueFields: []string{"email"},
		Log:          true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.IDs) != 4 {
		t.Fatalf("ids = %d, want 4", len(res.IDs))
	}
	if store.Inserts() != 4 {
		t.Errorf("inserts = %d, want 4", store.Inserts())
	}

	users, err := store.Users(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 4 {
		t.Fatalf("users = %d, want 4", len(users))
	}
	emails := make(map[string]bool)
	for _, u := range users {
		if missing := u.MissingFields(); len(missing) > 0 {
			t.Errorf("user %s missing %v", u.ID.Hex(), missing)
		}
		if emails[u.Email] {
			t.Errorf("duplicate email %q", u.Email)
		}
		emails[u.Email] = true
		if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
			t.Errorf("user %s not stamped", u.ID.Hex())
		}
	}
}

func TestSeedRetriesCollidingUniqueValues(t *testing.T) {
	store := memory.New()
	gen := &scripted{
		queue: map[schema.Hint][]any{
			schema.HintEmail: {"a@example.com", "a@example.com", "a@example.com", "b@example.com"},
		},
		fallback: faker.New(5),
	}
	uc := newUseCase(store, gen)

	if _, err := uc.Run(context.Background(), schema.UserEntity, usecase.Options{Count: 2, UniqueFields: []string{"email"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	docs := store.Documents("users")
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0]["email"] != "a@example.com" || docs[1]["email"] != "b@example.com" {
		t.Errorf("emails = %v, %v", docs[0]["email"], docs[1]["email"])
	}
}

func TestSeedUniqueEmailIgnoresCase(t *testing.T) {
	store := memory.New()
	gen := &scripted{
		queue: map[schema.Hint][]any{
			schema.HintEmail: {"Ann@example.com", "ann@example.com", " ANN@example.com", "bob@example.com"},
		},
		fallback: faker.New(5),
	}
	uc := newUseCase(store, gen)

	if _, err := uc.Run(context.Background(), schema.UserEntity, usecase.Options{Count: 2, UniqueFields: []string{"email"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	docs := store.Documents("users")
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0]["email"] != "Ann@example.com" || docs[1]["email"] != "bob@example.com" {
		t.Errorf("emails = %v, %v", docs[0]["email"], docs[1]["email"])
	}

	rep, err := (&usecase.VerifyUseCase{Log: slog.New(slog.NewTextHandler(io.Discard, nil)), Store: store}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !rep.OK() {
		t.Errorf("verify disagrees with seeded batch: %+v", rep)
	}
}

func TestSeedGenerationExhausted(t *testing.T) {
	store := memory.New()
	gen := &scripted{
		queue:    map[schema.Hint][]any{schema.HintEmail: {"same@example.com"}},
		fallback: faker.New(5),
	}
	uc := newUseCase(store, gen)
	uc.MaxAttempts = 3

	res, err := uc.Run(context.Background(), schema.UserEntity, usecase.Options{Count: 3, UniqueFields: []string{"email"}})
	if !errors.Is(err, domain.ErrGenerationExhausted) {
		t.Fatalf("err = %v, want ErrGenerationExhausted", err)
	}
	if len(res.IDs) != 1 || store.Inserts() != 1 {
		t.Errorf("inserted %d (result %d), want 1 before exhaustion", store.Inserts(), len(res.IDs))
	}
}

func TestSeedDuplicatesAllowedWithoutUniqueFields(t *testing.T) {
	store := memory.New()
	gen := &scripted{
		queue:    map[schema.Hint][]any{schema.HintEmail: {"same@example.com"}},
		fallback: faker.New(5),
	}
	if _, err := newUseCase(store, gen).Run(context.Background(), schema.UserEntity, usecase.Options{Count: 3}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.Inserts() != 3 {
		t.Errorf("inserts = %d, want 3", store.Inserts())
	}
}

func TestSeedNotConnected(t *testing.T) {
	store := memory.New()
	_ = store.Close(context.Background())

	_, err := newUseCase(store, faker.New(1)).Run(context.Background(), schema.UserEntity, usecase.Options{Count: 4, UniqueFields: []string{"email"}})
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestSeedTaskFailsRequiredFields(t *testing.T) {
	store := memory.New()
	_, err := newUseCase(store, faker.New(1)).Run(context.Background(), schema.TaskEntity, usecase.Options{Count: 1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if store.Inserts() != 0 {
		t.Errorf("inserts = %d, want 0", store.Inserts())
	}
}

func TestSeedUnhintedEntityFailsBeforeStoreAccess(t *testing.T) {
	store := memory.New()
	_ = store.Close(context.Background())
	uc := newUseCase(store, faker.New(1))

	for _, name := range []string{schema.TaskEntity, schema.TimeEntryEntity} {
		res, err := uc.Run(context.Background(), name, usecase.Options{Count: 2})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", name, err)
		}
		if len(res.IDs) != 0 {
			t.Errorf("%s: ids = %d, want 0", name, len(res.IDs))
		}
	}
}

func TestSeedProjectsReferenceExistingUsers(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	uc := newUseCase(store, faker.New(11))

	users, err := uc.Run(ctx, schema.UserEntity, usecase.Options{Count: 4, UniqueFields: []string{"email"}})
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	known := make(map[primitive.ObjectID]bool)
	for _, id := range users.IDs {
		known[id] = true
	}

	if _, err := uc.Run(ctx, schema.ProjectEntity, usecase.Options{Count: 5}); err != nil {
		t.Fatalf("seed projects: %v", err)
	}
	for i, doc := range store.Documents("projects") {
		refs, ok := doc["users"].([]primitive.ObjectID)
		if !ok || len(refs) == 0 {
			t.Fatalf("project %d users = %#v", i, doc["users"])
		}
		seen := make(map[primitive.ObjectID]bool)
		for _, id := range refs {
			if !known[id] {
				t.Errorf("project %d references unknown user %s", i, id.Hex())
			}
			if seen[id] {
				t.Errorf("project %d references %s twice", i, id.Hex())
			}
			seen[id] = true
		}
	}
}

func TestSeedProjectsWithoutUsersLeavesReferenceUnset(t *testing.T) {
	store := memory.New()
	if _, err := newUseCase(store, faker.New(3)).Run(context.Background(), schema.ProjectEntity, usecase.Options{Count: 1}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := store.Documents("projects")[0]["users"]; ok {
		t.Error("users set although no users exist")
	}
}

func TestSeedHashesPasswords(t *testing.T) {
	store := memory.New()
	gen := &scripted{
		queue:    map[schema.Hint][]any{schema.HintPassword: {"Secret#123"}},
		fallback: faker.New(8),
	}
	uc := newUseCase(store, gen)
	uc.HashPasswords = true

	if _, err := uc.Run(context.Background(), schema.UserEntity, usecase.Options{Count: 1}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	hashed := store.Documents("users")[0]["password"].(string)
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte("Secret#123")); err != nil {
		t.Errorf("stored password is not a bcrypt hash of the generated one: %v", err)
	}
}

func TestSeedRejectsBadOptions(t *testing.T) {
	uc := newUseCase(memory.New(), faker.New(1))
	ctx := context.Background()

	if _, err := uc.Run(ctx, "Invoice", usecase.Options{Count: 1}); !errors.Is(err, domain.ErrUnknownEntity) {
		t.Errorf("unknown entity err = %v", err)
	}
	if _, err := uc.Run(ctx, schema.UserEntity, usecase.Options{Count: 0}); err == nil {
		t.Error("expected error for zero count")
	}
	if _, err := uc.Run(ctx, schema.UserEntity, usecase.Options{Count: 1, UniqueFields: []string{"phone"}}); err == nil {
		t.Error("expected error for undeclared unique field")
	}
	if _, err := uc.Run(ctx, schema.TaskEntity, usecase.Options{Count: 1, UniqueFields: []string{"name"}}); err == nil {
		t.Error("expected error for unique field without hint")
	}
}

func TestSeedStopsOnCancelledContext(t *testing.T) {
	store := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newUseCase(store, faker.New(1)).Run(ctx, schema.UserEntity, usecase.Options{Count: 4}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if store.Inserts() != 0 {
		t.Errorf("inserts = %d, want 0", store.Inserts())
	}
}
