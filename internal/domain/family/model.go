package family

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors.
var (
	ErrEmptyName        = errors.New("family name is required")
	ErrEmptyParentName  = errors.New("parent name is required")
	ErrEmptyParentEmail = errors.New("parent email is required")
	ErrEmptyChildID     = errors.New("child ID is required")
	ErrEmptyChildName   = errors.New("child name is required")
	ErrNegativeChildAge = errors.New("child age cannot be negative")
)

// Child is a family member who can be booked into sessions.
// Children have no lifecycle outside their Family.
type Child struct {
	ID           string
	Name         string
	Age          int
	InterestTags []string
}

// Family is a household with one parent contact and an ordered list of children.
type Family struct {
	ID          string
	Name        string
	ParentName  string
	ParentEmail string
	Children    []Child
}

// Validate checks the family and its children.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
// INVARIANT: child IDs are unique within the family
func (f *Family) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(f.ParentName) == "" {
		return ErrEmptyParentName
	}
	if strings.TrimSpace(f.ParentEmail) == "" {
		return ErrEmptyParentEmail
	}
	seen := make(map[string]struct{}, len(f.Children))
	for _, c := range f.Children {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate child ID %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Validate checks a single child.
func (c *Child) Validate() error {
	if c.ID == "" {
		return ErrEmptyChildID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyChildName
	}
	if c.Age < 0 {
		return ErrNegativeChildAge
	}
	return nil
}

// FindChild returns the child with the given ID.
// POST: ok is false when no child matches
func (f Family) FindChild(childID string) (Child, bool) {
	for _, c := range f.Children {
		if c.ID == childID {
			return c, true
		}
	}
	return Child{}, false
}
