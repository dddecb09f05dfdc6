package personas

import (
	"fmt"

	"github.com/personachat/pkg/models"
)

// Registry is a read-only table of personas, built once at startup
type Registry struct {
	ordered []models.Persona
	byID    map[string]int
}

// New creates a Registry from the given personas. The first entry is the default.
func New(list []models.Persona) (*Registry, error) {
	if len(list) == 0 {
		return nil, ErrNoPersonas
	}

	r := &Registry{
		ordered: make([]models.Persona, 0, len(list)),
		byID:    make(map[string]int, len(list)),
	}

	for i, p := range list {
		if p.ID == "" {
			return nil, fmt.Errorf("persona at index %d has no id", i)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		// An empty system prompt is allowed: the provider then runs with its default behavior.
		r.byID[p.ID] = len(r.ordered)
		r.ordered = append(r.ordered, p)
	}

	return r, nil
}

// GetByID returns the persona with the given id
func (r *Registry) GetByID(id string) (models.Persona, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return models.Persona{}, false
	}
	return r.ordered[idx], true
}

// Default returns the first configured persona
func (r *Registry) Default() models.Persona {
	return r.ordered[0]
}

// All returns every persona in configuration order
func (r *Registry) All() []models.Persona {
	out := make([]models.Persona, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of personas
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Errors
var (
	ErrNoPersonas = error(ErrorRegistry("at least one persona must be configured"))
)

// ErrorRegistry is returned when a registry cannot be built
type ErrorRegistry string

func (e ErrorRegistry) Error() string {
	return string(e)
}
