package index

import (
	"errors"
	"fmt"
)

var (
	// ErrNameCollision is returned when a second source path claims a base
	// name already owned by another file under the same metadata root.
	ErrNameCollision = errors.New("base name already tracked for a different file")

	// ErrNotTracked is returned for names absent from the index.
	ErrNotTracked = errors.New("file is not tracked")
)

// CollisionError carries both sides of a base-name collision.
type CollisionError struct {
	Name     string
	Owner    string
	Claimant string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %q is already tracked for %s (refusing %s; set allow_name_collisions to share the history)",
		ErrNameCollision, e.Name, e.Owner, e.Claimant)
}

// Is makes every CollisionError match ErrNameCollision.
func (e *CollisionError) Is(target error) bool {
	return target == ErrNameCollision
}
