package faker

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"trackseed/internal/schema"
)

// Generator implements ports.Generator on top of gofakeit.
type Generator struct {
	f *gofakeit.Faker
}

// New returns a generator. A zero seed draws from a random source; any other
// value makes runs reproducible.
func New(seed int64) *Generator {
	return &Generator{f: gofakeit.New(seed)}
}

func (g *Generator) Value(hint schema.Hint) (any, error) {
	switch hint {
	case schema.HintUserName:
		return g.f.Username(), nil
	case schema.HintEmail:
		return g.f.Email(), nil
	case schema.HintPassword:
		return g.f.Password(true, true, true, true, false, 14), nil
	case schema.HintFirstName:
		return g.f.FirstName(), nil
	case schema.HintLastName:
		return g.f.LastName(), nil
	case schema.HintCompanyName:
		return g.f.Company(), nil
	case schema.HintParagraph:
		return g.f.Paragraph(1, 4, 12, " "), nil
	}
	return nil, fmt.Errorf("faker: no generator for hint %q", hint)
}

func (g *Generator) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return g.f.IntRange(0, n-1)
}
