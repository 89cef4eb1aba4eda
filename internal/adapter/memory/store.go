// Package memory keeps documents in process. It backs dry runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trackseed/internal/domain"
	"trackseed/internal/schema"
)

type record struct {
	id  primitive.ObjectID
	doc schema.Document
}

type Store struct {
	mu      sync.Mutex
	colls   map[string][]record
	closed  bool
	inserts int
}

func New() *Store {
	return &Store{colls: make(map[string][]record)}
}

func (s *Store) Insert(ctx context.Context, collection string, doc schema.Document) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return primitive.NilObjectID, domain.ErrNotConnected
	}
	cp := make(schema.Document, len(doc))
	for k, v := range doc {
		cp[k] = v
	}
	id := primitive.NewObjectID()
	s.colls[collection] = append(s.colls[collection], record{id: id, doc: cp})
	s.inserts++
	return id, nil
}

func (s *Store) IDs(ctx context.Context, collection string) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrNotConnected
	}
	ids := make([]primitive.ObjectID, 0, len(s.colls[collection]))
	for _, r := range s.colls[collection] {
		ids = append(ids, r.id)
	}
	return ids, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.ErrNotConnected
	}
	return int64(len(s.colls[collection])), nil
}

func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrNotConnected
	}
	users := make([]domain.User, 0, len(s.colls["users"]))
	for _, r := range s.colls["users"] {
		u := domain.User{ID: r.id}
		u.Username, _ = r.doc["username"].(string)
		u.Email, _ = r.doc["email"].(string)
		u.Password, _ = r.doc["password"].(string)
		u.FirstName, _ = r.doc["first_name"].(string)
		u.LastName, _ = r.doc["last_name"].(string)
		u.CreatedAt, _ = r.doc[schema.CreatedAtKey].(time.Time)
		u.UpdatedAt, _ = r.doc[schema.UpdatedAtKey].(time.Time)
		users = append(users, u)
	}
	return users, nil
}

// Documents returns a copy of the stored documents of a collection.
func (s *Store) Documents(collection string) []schema.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.Document, 0, len(s.colls[collection]))
	for _, r := range s.colls[collection] {
		out = append(out, r.doc)
	}
	return out
}

// Inserts reports how many insert calls succeeded across all collections.
func (s *Store) Inserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
