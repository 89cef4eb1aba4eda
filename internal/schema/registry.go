package schema

import (
	"fmt"
	"strings"

	"trackseed/internal/domain"
)

const (
	UserEntity      = "User"
	ProjectEntity   = "Project"
	TaskEntity      = "Task"
	TimeEntryEntity = "TimeEntry"
)

// Registry holds entity declarations in declaration order.
type Registry struct {
	entities []Entity
	byName   map[string]int
}

// NewRegistry builds a registry, rejecting duplicates and dangling references.
func NewRegistry(entities ...Entity) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(entities))}
	for _, e := range entities {
		key := strings.ToLower(e.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("schema: duplicate entity %q", e.Name)
		}
		r.byName[key] = len(r.entities)
		r.entities = append(r.entities, e)
	}
	for _, e := range r.entities {
		for _, f := range e.Fields {
			if f.Type != Reference && f.Type != ReferenceList {
				continue
			}
			if _, ok := r.byName[strings.ToLower(f.Ref)]; !ok {
				return nil, fmt.Errorf("schema: %s.%s references unknown entity %q", e.Name, f.Name, f.Ref)
			}
		}
	}
	return r, nil
}

// Lookup finds an entity by name, ignoring case.
func (r *Registry) Lookup(name string) (Entity, error) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", domain.ErrUnknownEntity, name)
	}
	return r.entities[i], nil
}

// Entities returns the declarations in order.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// Default returns the time-tracking schemas. Only User and Project carry
// enough hints to be seeded; Task and TimeEntry are declared for application
// code and fail validation if seeded.
func Default() *Registry {
	r, err := NewRegistry(
		Entity{
			Name:       UserEntity,
			Collection: "users",
			Timestamps: true,
			Fields: []Field{
				{Name: "username", Type: Text, Required: true, Hint: HintUserName},
				{Name: "email", Type: Text, Required: true, Hint: HintEmail, Rule: "email"},
				{Name: "password", Type: Text, Required: true, Hint: HintPassword},
				{Name: "first_name", Type: Text, Required: true, Hint: HintFirstName},
				{Name: "last_name", Type: Text, Required: true, Hint: HintLastName},
			},
		},
		Entity{
			Name:       ProjectEntity,
			Collection: "projects",
			Fields: []Field{
				{Name: "name", Type: Text, Required: true, Hint: HintCompanyName},
				{Name: "description", Type: Text, Required: true, Hint: HintParagraph},
				{Name: "users", Type: ReferenceList, Ref: UserEntity, Hint: ForeignKey(UserEntity)},
			},
		},
		Entity{
			Name:       TaskEntity,
			Collection: "tasks",
			Fields: []Field{
				{Name: "name", Type: Text, Required: true},
				{Name: "description", Type: Text, Required: true},
				{Name: "project", Type: Reference, Ref: ProjectEntity},
				{Name: "users", Type: ReferenceList, Ref: UserEntity},
				{Name: "created_at", Type: Timestamp, Required: true},
				{Name: "updated_at", Type: Timestamp, Required: true},
				{Name: "created_by", Type: Reference, Ref: UserEntity},
			},
		},
		Entity{
			Name:       TimeEntryEntity,
			Collection: "timeentries",
			Timestamps: true,
			Fields: []Field{
				{Name: "task", Type: Reference, Required: true, Ref: TaskEntity},
				{Name: "startTime", Type: Timestamp, Required: true},
				{Name: "endTime", Type: Timestamp},
				{Name: "duration", Type: Number, Required: true, Rule: "gte=0"},
				{Name: "description", Type: Text},
				{Name: "user", Type: Reference, Required: true, Ref: UserEntity},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}
