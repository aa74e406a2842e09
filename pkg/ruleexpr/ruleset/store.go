package ruleset

import (
	"time"

	"github.com/google/uuid"
)

// Store persists rules by name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts or replaces the rule with r.Name and returns the stored copy.
	// An existing rule keeps its ID; a new rule without an ID gets a fresh one.
	// Returns an error wrapping ErrInvalidRule if r fails Validate.
	Save(r Rule) (Rule, error)

	// Get retrieves a rule.
	// Returns ErrNotFound if no rule has that name.
	Get(name string) (Rule, error)

	// List returns all rules ordered by name.
	// Returns an empty slice (not error) if the store is empty.
	List() ([]Rule, error)

	// Delete removes a rule.
	// Returns nil if the rule doesn't exist.
	Delete(name string) error

	// Close releases any resources (connections, files).
	Close() error
}

// prepare stamps the fields a store owns before writing r.
// existingID is the ID of the stored rule with the same name, if any.
func prepare(r Rule, existingID string) Rule {
	switch {
	case existingID != "":
		r.ID = existingID
	case r.ID == "":
		r.ID = uuid.New().String()
	}
	r.UpdatedAt = time.Now().UTC()
	return r
}
