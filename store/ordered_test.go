package store_test

import (
	"fmt"
	"strings"
	"testing"

	courseModels "lms/models/course"
	"lms/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Lesson{},
	))
	return db
}

func lessonCollection(db *gorm.DB) *store.Collection[courseModels.Lesson, *courseModels.Lesson] {
	return store.NewCollection[courseModels.Lesson, *courseModels.Lesson](db, "module_id")
}

func addLesson(t *testing.T, c *store.Collection[courseModels.Lesson, *courseModels.Lesson], moduleID uint, title string) *courseModels.Lesson {
	t.Helper()
	lesson := &courseModels.Lesson{Title: title}
	require.NoError(t, c.InsertAtEnd(moduleID, lesson))
	return lesson
}

func titles(lessons []courseModels.Lesson) []string {
	out := make([]string, len(lessons))
	for i, l := range lessons {
		out[i] = l.Title
	}
	return out
}

func positions(lessons []courseModels.Lesson) []int {
	out := make([]int, len(lessons))
	for i, l := range lessons {
		out[i] = l.Position
	}
	return out
}

func TestInsertAtEndAssignsDensePositions(t *testing.T) {
	db := openTestDB(t)
	c := lessonCollection(db)

	l1 := addLesson(t, c, 1, "L1")
	l2 := addLesson(t, c, 1, "L2")
	l3 := addLesson(t, c, 1, "L3")

	assert.Equal(t, 1, l1.Position)
	assert.Equal(t, 2, l2.Position)
	assert.Equal(t, 3, l3.Position)

	listed, err := c.ListOrdered(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "L3"}, titles(listed))
	assert.Equal(t, []int{1, 2, 3}, positions(listed))
}

func TestInsertAtEndScopedPerParent(t *testing.T) {
	db := openTestDB(t)
	c := lessonCollection(db)

	addLesson(t, c, 1, "A1")
	addLesson(t, c, 2, "B1")
	addLesson(t, c, 1, "A2")

	first, err := c.ListOrdered(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, positions(first))

	second, err := c.ListOrdered(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, positions(second))
}

func TestListOrderedEmptyParent(t *testing.T) {
	db := openTestDB(t)
	c := lessonCollection(db)

	listed, err := c.ListOrdered(42)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRemoveMiddleCompactsAndKeepsOrder(t *testing.T) {
	db := openTestDB(t)
	c := lessonCollection(db)

	addLesson(t, c, 1, "L1")
	l2 := addLesson(t, c, 1, "L2")
	addLesson(t, c, 1, "L3")

	require.NoError(t, c.RemoveAndCompact(1, l2.ID))

	listed, err := c.ListOrdered(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L3"}, titles(listed))
	assert.Equal(t, []int{1, 2}, positions(listed))
}

func TestRemoveFirstAndLast(t *testing.T) {
	db := openTestDB(t)
	c := lessonCollection(db)

	l1 := addLesson(t, c, 1, "L1")
	addLesson(t, c, 1, "L2")
	l3 := addLesson(t, c, 1, "L3")

	require.NoError(t, c.RemoveAndCompact(1, l3.ID))
	require.NoError(t, c.RemoveAndCompact(1, l1.ID))

	listed, err := c.ListOrdered(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"L2"}, titles(listed))
	assert.Equal(t, []int{1}, positions(listed))
}

func TestRemoveAndCompactNotFound(t *testing.T) {
	db := openTestDB(t)
	c := lessonCollection(db)

	l1 := addLesson(t, c, 1, "L1")

	// Unknown child
	assert.ErrorIs(t, c.RemoveAndCompact(1, 999), store.ErrNotFound)
	// Child of a different parent
	assert.ErrorIs(t, c.RemoveAndCompact(2, l1.ID), store.ErrNotFound)
	// Already removed
	require.NoError(t, c.RemoveAndCompact(1, l1.ID))
	assert.ErrorIs(t, c.RemoveAndCompact(1, l1.ID), store.ErrNotFound)
}

func TestDensityAfterMixedOperations(t *testing.T) {
	db := openTestDB(t)
	c := lessonCollection(db)

	checkDense := func() {
		listed, err := c.ListOrdered(1)
		require.NoError(t, err)
		for i, l := range listed {
			require.Equal(t, i+1, l.Position)
		}
	}

	var ids []uint
	for i := 0; i < 6; i++ {
		l := addLesson(t, c, 1, fmt.Sprintf("L%d", i+1))
		ids = append(ids, l.ID)
		checkDense()
	}

	require.NoError(t, c.RemoveAndCompact(1, ids[2]))
	checkDense()
	require.NoError(t, c.RemoveAndCompact(1, ids[0]))
	checkDense()

	addLesson(t, c, 1, "L7")
	checkDense()
	require.NoError(t, c.RemoveAndCompact(1, ids[5]))
	checkDense()

	listed, err := c.ListOrdered(1)
	require.NoError(t, err)
	assert.Len(t, listed, 4)
}
