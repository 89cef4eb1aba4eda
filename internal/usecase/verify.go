package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trackseed/internal/domain"
	"trackseed/internal/ports"
	"trackseed/internal/schema"
)

// Report summarizes the state of the users collection.
type Report struct {
	Users           int
	Collections     map[string]int64    // collection -> documents, when a registry is set
	MissingFields   map[string][]string // user id -> empty required fields
	DuplicateEmails map[string]int      // email -> occurrences, only when > 1
}

// OK reports whether no violation was found.
func (r Report) OK() bool {
	return len(r.MissingFields) == 0 && len(r.DuplicateEmails) == 0
}

// VerifyUseCase checks seeded users for required fields and email uniqueness.
type VerifyUseCase struct {
	Log      *slog.Logger
	Store    ports.Store
	Registry *schema.Registry // optional, enables per-collection counts
}

func (uc *VerifyUseCase) Run(ctx context.Context) (Report, error) {
	if uc.Store == nil {
		return Report{}, errors.New("usecase not initialized: missing dependencies")
	}
	users, err := uc.Store.Users(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{
		Users:           len(users),
		MissingFields:   make(map[string][]string),
		DuplicateEmails: make(map[string]int),
	}
	if uc.Registry != nil {
		rep.Collections = make(map[string]int64)
		for _, e := range uc.Registry.Entities() {
			n, err := uc.Store.Count(ctx, e.Collection)
			if err != nil {
				return Report{}, fmt.Errorf("count %s: %w", e.Collection, err)
			}
			rep.Collections[e.Collection] = n
		}
	}
	seen := make(map[string]int, len(users))
	for _, u := range users {
		if missing := u.MissingFields(); len(missing) > 0 {
			rep.MissingFields[u.ID.Hex()] = missing
		}
		if u.Email != "" {
			seen[domain.NormalizeEmail(u.Email)]++
		}
	}
	for email, n := range seen {
		if n > 1 {
			rep.DuplicateEmails[email] = n
		}
	}
	uc.Log.Info("verified users",
		slog.Int("users", rep.Users),
		slog.Int("incomplete", len(rep.MissingFields)),
		slog.Int("duplicate_emails", len(rep.DuplicateEmails)),
	)
	return rep, nil
}
