package store

import "gorm.io/gorm"

// ApplyPermutation moves the parent's live children into the order given by
// orderedIDs (index 0 ends up at position 1, and so on). orderedIDs must be
// exactly the current live child-id set, no additions or omissions, or
// ErrInvalidPermutation is returned and nothing changes.
//
// The renumbering is two-phase to keep the (parent, position) unique index
// satisfied at every row write:
//
//	Phase A: child at index i is displaced to position -(i+1). Negative
//	         positions are disjoint from all live positive positions and
//	         from each other, so no write can collide even while the old
//	         positive values are still being vacated.
//	Phase B: child at index i is committed to position i+1. Phase A already
//	         moved every positive occupant out, so these writes land on an
//	         empty positive space.
//
// Both phases run in one transaction; no reader outside it ever observes a
// negative intermediate position, and a failed reorder leaves the prior
// ordering fully intact. The identity permutation still runs both phases.
func (c *Collection[T, PT]) ApplyPermutation(parentID uint, orderedIDs []uint) ([]T, error) {
	var result []T
	err := c.retryOnConflict(func(tx *gorm.DB) error {
		scoped := c.WithDB(tx)

		current, err := scoped.ListOrdered(parentID)
		if err != nil {
			return err
		}
		if err := validatePermutation[T, PT](current, orderedIDs); err != nil {
			return err
		}

		// Phase A: displace into negative staging.
		for i, id := range orderedIDs {
			err = tx.Model(new(T)).Where("id = ?", id).
				Update("position", -(i + 1)).Error
			if err != nil {
				return err
			}
		}

		// Phase B: commit the final 1-based positions.
		for i, id := range orderedIDs {
			err = tx.Model(new(T)).Where("id = ?", id).
				Update("position", i+1).Error
			if err != nil {
				return err
			}
		}

		result, err = scoped.ListOrdered(parentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validatePermutation checks that orderedIDs is exactly the id set of
// current, with no duplicates.
func validatePermutation[T any, PT childPtr[T]](current []T, orderedIDs []uint) error {
	if len(orderedIDs) != len(current) {
		return ErrInvalidPermutation
	}
	existing := make(map[uint]bool, len(current))
	for i := range current {
		existing[PT(&current[i]).ChildID()] = true
	}
	seen := make(map[uint]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !existing[id] || seen[id] {
			return ErrInvalidPermutation
		}
		seen[id] = true
	}
	return nil
}
