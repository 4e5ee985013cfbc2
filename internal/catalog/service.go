package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownForm  = errors.New("unknown form")
	ErrInvalidClass = errors.New("class does not belong to form")
)

// Service is an in-memory snapshot of the form/class catalog. The catalog is
// read-only at runtime: Load runs once at startup, after seeding, and the
// server must not serve requests before it succeeds.
type Service interface {
	Forms() []Form
	Validate(form int, class string) error
	ClassLetter(form int, class string) (rune, error)
}

type service struct {
	forms  []Form
	byForm map[int]Form
}

// Load seeds missing defaults and snapshots the full catalog.
func Load(ctx context.Context, repo Repository) (Service, error) {
	if err := repo.Seed(ctx, Defaults()); err != nil {
		return nil, fmt.Errorf("failed to seed form catalog: %w", err)
	}

	forms, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load form catalog: %w", err)
	}
	if len(forms) == 0 {
		return nil, errors.New("form catalog is empty after seeding")
	}

	return NewService(forms), nil
}

func NewService(forms []Form) Service {
	sorted := append([]Form(nil), forms...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Form < sorted[j].Form })

	byForm := make(map[int]Form, len(sorted))
	for _, f := range sorted {
		byForm[f.Form] = f
	}
	return &service{
		forms:  sorted,
		byForm: byForm,
	}
}

func (s *service) Forms() []Form {
	return s.forms
}

func (s *service) Validate(form int, class string) error {
	f, ok := s.byForm[form]
	if !ok {
		return ErrUnknownForm
	}
	for _, c := range f.Classes {
		if c == class {
			return nil
		}
	}
	return ErrInvalidClass
}

// ClassLetter maps a class to its letter by catalog position: the first class
// of a form is A, the second B, and so on.
func (s *service) ClassLetter(form int, class string) (rune, error) {
	f, ok := s.byForm[form]
	if !ok {
		return 0, ErrUnknownForm
	}
	for i, c := range f.Classes {
		if c == class {
			return rune('A' + i), nil
		}
	}
	return 0, ErrInvalidClass
}
