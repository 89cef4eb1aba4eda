package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanStep is one seeding batch.
type PlanStep struct {
	Entity string   `yaml:"entity"`
	Count  int      `yaml:"count"`
	Unique []string `yaml:"unique"`
	Log    bool     `yaml:"log"`
}

// Plan lists batches run in order.
//
//	seeds:
//	  - entity: User
//	    count: 4
//	    unique: [email]
//	    log: true
type Plan struct {
	Seeds []PlanStep `yaml:"seeds"`
}

// DefaultPlan seeds four users with distinct emails.
func DefaultPlan() Plan {
	return Plan{Seeds: []PlanStep{
		{Entity: "User", Count: 4, Unique: []string{"email"}, Log: true},
	}}
}

// LoadPlan reads a YAML plan. An empty path yields DefaultPlan.
func LoadPlan(path string) (Plan, error) {
	if path == "" {
		return DefaultPlan(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, fmt.Errorf("plan %s: %w", path, err)
	}
	return p, nil
}

func (p Plan) Validate() error {
	if len(p.Seeds) == 0 {
		return errors.New("no seeds")
	}
	for i, s := range p.Seeds {
		if s.Entity == "" {
			return fmt.Errorf("seed %d: entity is required", i+1)
		}
		if s.Count <= 0 {
			return fmt.Errorf("seed %d (%s): count must be positive", i+1, s.Entity)
		}
	}
	return nil
}
