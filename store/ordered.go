// Package store implements parent-scoped, uniquely-positioned child
// collections: the ordered lists of modules within a course and lessons
// within a module. Live children always occupy positions 1..N with no gaps or
// duplicates; soft-deleted rows are parked at position = -id, outside the
// live space.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// OrderedChild is implemented by models kept in an ordered collection.
type OrderedChild interface {
	ChildID() uint
	ChildPosition() int
	SetPosition(int)
	SetParentID(uint)
}

// childPtr constrains PT to *T implementing OrderedChild.
type childPtr[T any] interface {
	*T
	OrderedChild
}

// Number of times a write colliding on the (parent, position) unique index is
// retried before surfacing ErrConflictRetryable.
const maxConflictRetries = 3

// Collection exposes position-aware CRUD over a homogeneous child collection
// scoped to one parent row. parentCol is the FK column, e.g. "course_id".
type Collection[T any, PT childPtr[T]] struct {
	db        *gorm.DB
	parentCol string
}

// NewCollection builds a collection over db for children referencing their
// parent through parentCol.
func NewCollection[T any, PT childPtr[T]](db *gorm.DB, parentCol string) *Collection[T, PT] {
	return &Collection[T, PT]{db: db, parentCol: parentCol}
}

// WithDB returns a copy bound to db, typically an already-open transaction.
func (c *Collection[T, PT]) WithDB(db *gorm.DB) *Collection[T, PT] {
	return &Collection[T, PT]{db: db, parentCol: c.parentCol}
}

// ListOrdered returns the parent's live children sorted by position. A parent
// with no children yields an empty slice; parent existence is the caller's
// concern. Returns ErrInconsistentState if the live positions are not a dense
// 1..N sequence.
func (c *Collection[T, PT]) ListOrdered(parentID uint) ([]T, error) {
	var items []T
	err := c.db.
		Where(c.parentCol+" = ? AND is_deleted = ? AND position > 0", parentID, false).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for i := range items {
		if PT(&items[i]).ChildPosition() != i+1 {
			return nil, ErrInconsistentState
		}
	}
	return items, nil
}

// InsertAtEnd creates child under parentID with position = current max + 1
// (1 for a childless parent). The max-read and the insert run in one
// transaction; if a concurrent insert claims the same position the unique
// index rejects it and the whole unit is retried.
func (c *Collection[T, PT]) InsertAtEnd(parentID uint, child PT) error {
	return c.retryOnConflict(func(tx *gorm.DB) error {
		var maxPos int
		err := tx.Model(new(T)).
			Where(c.parentCol+" = ? AND is_deleted = ? AND position > 0", parentID, false).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error
		if err != nil {
			return err
		}
		child.SetParentID(parentID)
		child.SetPosition(maxPos + 1)
		return tx.Create(child).Error
	})
}

// RemoveAndCompact soft-deletes the child and shifts every live sibling with a
// higher position down by one, restoring density. Returns ErrNotFound if
// childID is not a live child of parentID.
func (c *Collection[T, PT]) RemoveAndCompact(parentID, childID uint) error {
	return c.retryOnConflict(func(tx *gorm.DB) error {
		var child T
		err := tx.
			Where("id = ? AND "+c.parentCol+" = ? AND is_deleted = ? AND position > 0", childID, parentID, false).
			First(&child).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		removedPos := PT(&child).ChildPosition()

		// Park the deleted row in negative space so its old position is free
		// before any sibling moves.
		err = tx.Model(new(T)).Where("id = ?", childID).
			Updates(map[string]interface{}{"is_deleted": true, "position": -int(childID)}).Error
		if err != nil {
			return err
		}

		// Shift one row at a time in ascending order: each write lands on a
		// slot vacated by the previous one, so the unique index is never
		// violated mid-compaction.
		var siblings []T
		err = tx.
			Where(c.parentCol+" = ? AND is_deleted = ? AND position > ?", parentID, false, removedPos).
			Order("position asc").
			Find(&siblings).Error
		if err != nil {
			return err
		}
		for i := range siblings {
			s := PT(&siblings[i])
			err = tx.Model(new(T)).Where("id = ?", s.ChildID()).
				Update("position", s.ChildPosition()-1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// retryOnConflict runs op in a transaction, retrying a bounded number of
// times when a (parent, position) uniqueness collision from a concurrent
// writer rolls it back.
func (c *Collection[T, PT]) retryOnConflict(op func(tx *gorm.DB) error) error {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := c.db.Transaction(op)
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return err
	}
	return ErrConflictRetryable
}
