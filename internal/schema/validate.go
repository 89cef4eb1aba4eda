package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trackseed/internal/domain"
)

var validate = validator.New()

// Validate checks doc against the entity declaration: required keys, value
// types, and per-field rules. Unknown keys are rejected.
func (e Entity) Validate(doc Document) error {
	for _, f := range e.Fields {
		v, ok := doc[f.Name]
		if !ok || v == nil || isEmpty(v) {
			if f.Required {
				return e.violation(f.Name, "is required")
			}
			continue
		}
		if err := checkType(f, v); err != nil {
			return e.violation(f.Name, err.Error())
		}
		if f.Rule == "" {
			continue
		}
		if err := validate.Var(v, f.Rule); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return e.violation(f.Name, fmt.Sprintf("failed %q (got %v)", verrs[0].ActualTag(), v))
			}
			return e.violation(f.Name, err.Error())
		}
	}
	for k := range doc {
		if _, ok := e.Field(k); ok {
			continue
		}
		switch {
		case k == "_id":
		case e.Timestamps && (k == CreatedAtKey || k == UpdatedAtKey):
		default:
			return e.violation(k, "is not declared")
		}
	}
	return nil
}

func (e Entity) violation(field, msg string) error {
	return fmt.Errorf("%w: %s.%s %s", domain.ErrValidation, e.Name, field, msg)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case time.Time:
		return x.IsZero()
	case primitive.ObjectID:
		return x.IsZero()
	case []primitive.ObjectID:
		return len(x) == 0
	}
	return false
}

func checkType(f Field, v any) error {
	switch f.Type {
	case Text:
		if _, ok := v.(string); ok {
			return nil
		}
	case Timestamp:
		if _, ok := v.(time.Time); ok {
			return nil
		}
	case Number:
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return nil
		}
	case Reference:
		if _, ok := v.(primitive.ObjectID); ok {
			return nil
		}
	case ReferenceList:
		if _, ok := v.([]primitive.ObjectID); ok {
			return nil
		}
	}
	return fmt.Errorf("must be %s, got %T", f.Type, v)
}
