package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"trackseed/internal/domain"
	"trackseed/internal/ports"
	"trackseed/internal/schema"
)

// DefaultMaxAttempts bounds how often a unique field is re-synthesized.
const DefaultMaxAttempts = 50

// maxRefs caps how many ids a generated reference list holds.
const maxRefs = 3

// Options controls one seeding batch.
type Options struct {
	Count        int
	UniqueFields []string
	Log          bool
}

// Result lists the ids inserted by a batch, in insertion order.
type Result struct {
	Entity string
	IDs    []primitive.ObjectID
}

// SeedUseCase synthesizes documents for an entity and inserts them.
type SeedUseCase struct {
	Log       *slog.Logger
	Store     ports.Store
	Generator ports.Generator
	Registry  *schema.Registry

	Now           func() time.Time
	MaxAttempts   int
	HashPasswords bool
}

// Run inserts opts.Count documents of the named entity. Values of
// opts.UniqueFields are distinct across the batch. The first failure stops
// the batch; ids inserted before it are returned with the error.
func (uc *SeedUseCase) Run(ctx context.Context, entity string, opts Options) (Result, error) {
	if uc.Store == nil || uc.Generator == nil || uc.Registry == nil {
		return Result{}, errors.New("usecase not initialized: missing dependencies")
	}
	e, err := uc.Registry.Lookup(entity)
	if err != nil {
		return Result{}, err
	}
	res := Result{Entity: e.Name}
	if opts.Count <= 0 {
		return res, fmt.Errorf("seed %s: count must be positive, got %d", e.Name, opts.Count)
	}
	if !e.Hinted() {
		return res, fmt.Errorf("seed %s: %w: required fields without generation hint", e.Name, domain.ErrValidation)
	}
	for _, name := range opts.UniqueFields {
		f, ok := e.Field(name)
		if !ok {
			return res, fmt.Errorf("seed %s: unique field %q is not declared", e.Name, name)
		}
		if f.Hint == schema.HintNone {
			return res, fmt.Errorf("seed %s: unique field %q has no generation hint", e.Name, name)
		}
	}

	refs, err := uc.loadRefs(ctx, e)
	if err != nil {
		return res, err
	}

	log := uc.Log.With(slog.String("entity", e.Name))
	log.Info("seeding", slog.Int("count", opts.Count), slog.Any("unique", opts.UniqueFields))

	b := batch{uc: uc, entity: e, refs: refs, unique: make(map[string]map[string]struct{})}
	for _, name := range opts.UniqueFields {
		b.unique[name] = make(map[string]struct{})
	}

	for i := 0; i < opts.Count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		doc, err := b.next()
		if err != nil {
			return res, fmt.Errorf("seed %s: record %d: %w", e.Name, i+1, err)
		}
		id, err := uc.Store.Insert(ctx, e.Collection, doc)
		if err != nil {
			return res, fmt.Errorf("seed %s: insert record %d: %w", e.Name, i+1, err)
		}
		res.IDs = append(res.IDs, id)
		if opts.Log {
			log.Info("inserted", slog.Int("n", i+1), slog.Int("of", opts.Count), slog.String("id", id.Hex()))
		}
	}
	log.Info("seeding done", slog.Int("inserted", len(res.IDs)))
	return res, nil
}

// loadRefs fetches ids for every foreign-key hint on the entity.
func (uc *SeedUseCase) loadRefs(ctx context.Context, e schema.Entity) (map[string][]primitive.ObjectID, error) {
	refs := make(map[string][]primitive.ObjectID)
	for _, f := range e.Fields {
		target, ok := f.Hint.Target()
		if !ok {
			continue
		}
		if _, done := refs[target]; done {
			continue
		}
		te, err := uc.Registry.Lookup(target)
		if err != nil {
			return nil, err
		}
		ids, err := uc.Store.IDs(ctx, te.Collection)
		if err != nil {
			return nil, fmt.Errorf("seed %s: load %s ids: %w", e.Name, target, err)
		}
		refs[target] = ids
	}
	return refs, nil
}

type batch struct {
	uc     *SeedUseCase
	entity schema.Entity
	refs   map[string][]primitive.ObjectID
	unique map[string]map[string]struct{}
}

func (b *batch) next() (schema.Document, error) {
	doc := make(schema.Document, len(b.entity.Fields)+2)
	for _, f := range b.entity.Fields {
		if f.Hint == schema.HintNone {
			continue
		}
		v, err := b.value(f)
		if err != nil {
			return nil, err
		}
		if v != nil {
			doc[f.Name] = v
		}
	}
	b.uc.stamp(b.entity, doc)
	if err := b.entity.Validate(doc); err != nil {
		return nil, err
	}
	if err := b.hashPassword(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *batch) value(f schema.Field) (any, error) {
	if target, ok := f.Hint.Target(); ok {
		return b.reference(f, b.refs[target]), nil
	}
	seen, isUnique := b.unique[f.Name]
	if !isUnique {
		return b.uc.Generator.Value(f.Hint)
	}
	for attempt := 0; attempt < b.uc.maxAttempts(); attempt++ {
		v, err := b.uc.Generator.Value(f.Hint)
		if err != nil {
			return nil, err
		}
		key := uniqueKey(f, v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s.%s after %d attempts", domain.ErrGenerationExhausted, b.entity.Name, f.Name, b.uc.maxAttempts())
}

// uniqueKey is the form a unique value is compared in. Emails compare
// case-insensitively, matching verify.
func uniqueKey(f schema.Field, v any) string {
	s := fmt.Sprint(v)
	if f.Hint == schema.HintEmail {
		return domain.NormalizeEmail(s)
	}
	return s
}

// reference picks ids from pool. An empty pool yields nil so the field is
// left unset.
func (b *batch) reference(f schema.Field, pool []primitive.ObjectID) any {
	if len(pool) == 0 {
		return nil
	}
	if f.Type == schema.Reference {
		return pool[b.uc.Generator.Intn(len(pool))]
	}
	n := 1 + b.uc.Generator.Intn(min(maxRefs, len(pool)))
	picked := make([]primitive.ObjectID, 0, n)
	used := make(map[int]bool, n)
	for len(picked) < n {
		i := b.uc.Generator.Intn(len(pool))
		if used[i] {
			continue
		}
		used[i] = true
		picked = append(picked, pool[i])
	}
	return picked
}

func (b *batch) hashPassword(doc schema.Document) error {
	if !b.uc.HashPasswords {
		return nil
	}
	for _, f := range b.entity.Fields {
		if f.Hint != schema.HintPassword {
			continue
		}
		pw, ok := doc[f.Name].(string)
		if !ok {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash %s: %w", f.Name, err)
		}
		doc[f.Name] = string(hashed)
	}
	return nil
}

func (uc *SeedUseCase) stamp(e schema.Entity, doc schema.Document) {
	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}
	e.Stamp(doc, now())
}

func (uc *SeedUseCase) maxAttempts() int {
	if uc.MaxAttempts > 0 {
		return uc.MaxAttempts
	}
	return DefaultMaxAttempts
}
