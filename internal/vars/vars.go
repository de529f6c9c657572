// Package vars holds the ordered variable set a sync run is responsible for,
// and the loaders that build it from files and command-line assignments.
package vars

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Variable is a single environment variable destined for the remote service.
type Variable struct {
	Key   string `validate:"envkey"`
	Value string
}

// ErrInvalidKey is returned for names that cannot be used as a variable key.
var ErrInvalidKey = errors.New("invalid variable name")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("envkey", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && !strings.ContainsAny(s, "= \t\r\n")
	})
	return v
}

// Validate reports whether v has a usable key.
func (v Variable) Validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidKey, v.Key)
	}
	return nil
}

// Set is an ordered mapping of unique names to values. The zero value is an
// empty set ready to use. Setting an existing name replaces its value in place.
type Set struct {
	vars  []Variable
	index map[string]int
}

// NewSet builds a set from vs; later duplicates replace earlier values.
func NewSet(vs ...Variable) *Set {
	s := &Set{}
	for _, v := range vs {
		s.Put(v.Key, v.Value)
	}
	return s
}

// Put inserts key or replaces its value, keeping its original position.
func (s *Set) Put(key, value string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[key]; ok {
		s.vars[i].Value = value
		return
	}
	s.index[key] = len(s.vars)
	s.vars = append(s.vars, Variable{Key: key, Value: value})
}

// Get returns the value stored for key.
func (s *Set) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.vars[i].Value, true
}

// Len returns the number of variables in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.vars)
}

// Variables returns a copy of the variables in insertion order.
func (s *Set) Variables() []Variable {
	if s == nil {
		return nil
	}
	out := make([]Variable, len(s.vars))
	copy(out, s.vars)
	return out
}

// Merge applies every variable of other on top of s.
func (s *Set) Merge(other *Set) {
	for _, v := range other.Variables() {
		s.Put(v.Key, v.Value)
	}
}

// Validate checks every key in the set and joins all problems found.
func (s *Set) Validate() error {
	var errs []error
	for _, v := range s.Variables() {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ParseAssignment parses a KEY=VALUE pair. The value may be empty and may
// itself contain '='.
func ParseAssignment(s string) (Variable, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Variable{}, fmt.Errorf("expected KEY=VALUE, got %q", s)
	}
	v := Variable{Key: strings.TrimSpace(key), Value: value}
	if err := v.Validate(); err != nil {
		return Variable{}, err
	}
	return v, nil
}

// ParseAssignments parses each pair and returns them as a set.
func ParseAssignments(pairs []string) (*Set, error) {
	s := &Set{}
	for _, p := range pairs {
		v, err := ParseAssignment(p)
		if err != nil {
			return nil, err
		}
		s.Put(v.Key, v.Value)
	}
	return s, nil
}
