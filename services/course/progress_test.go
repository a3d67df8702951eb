package courseService_test

import (
	"testing"

	courseModels "lms/models/course"
	courseService "lms/services/course"
	"lms/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) *courseModels.Enrollment {
	t.Helper()
	enrollment := &courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   courseModels.StatusActive,
	}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}

// seedCourse builds a course with one module and the given lessons, and
// returns the lesson ids in order.
func seedCourse(t *testing.T, db *gorm.DB, svc *courseService.StructureService, lessonTitles ...string) (*courseModels.Course, *courseModels.Module, []uint) {
	t.Helper()
	course := createCourse(t, db, "Go Basics")
	module := createModule(t, svc, course.ID, "Intro")
	ids := make([]uint, len(lessonTitles))
	for i, title := range lessonTitles {
		ids[i] = createLesson(t, svc, module.ID, title).ID
	}
	return course, module, ids
}

func TestMarkLessonCompleteUpdatesProgress(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2", "Lesson 3", "Lesson 4")
	enrollment := createEnrollment(t, db, 1, course.ID)

	updated, justCompleted, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	require.NoError(t, err)
	assert.False(t, justCompleted)
	assert.Equal(t, 25, updated.Progress)
	assert.Equal(t, 1, updated.CompletedLessons)
	assert.Equal(t, 4, updated.TotalLessons)
	assert.Equal(t, courseModels.StatusActive, updated.Status)
	assert.NotNil(t, updated.LastAccessed)

	updated, _, err = progress.MarkLessonComplete(enrollment.ID, lessons[1])
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
}

func TestMarkLessonCompleteIdempotent(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2")
	enrollment := createEnrollment(t, db, 1, course.ID)

	first, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	require.NoError(t, err)
	second, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	require.NoError(t, err)

	assert.Equal(t, first.Progress, second.Progress)
	assert.Equal(t, 50, second.Progress)
	assert.Len(t, second.CompletedLessonIDs, 1)
}

func TestMarkLessonCompleteNotFound(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1")
	enrollment := createEnrollment(t, db, 1, course.ID)

	_, _, err := progress.MarkLessonComplete(999, lessons[0])
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = progress.MarkLessonComplete(enrollment.ID, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkLessonCompleteRejectsForeignCourseLesson(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, _ := seedCourse(t, db, structure, "Lesson 1")
	enrollment := createEnrollment(t, db, 1, course.ID)

	other := createCourse(t, db, "Other Course")
	otherModule := createModule(t, structure, other.ID, "Module 1")
	otherLesson := createLesson(t, structure, otherModule.ID, "Other Lesson")

	_, _, err := progress.MarkLessonComplete(enrollment.ID, otherLesson.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkLessonCompleteRejectsDeletedLesson(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2")
	enrollment := createEnrollment(t, db, 1, course.ID)

	require.NoError(t, structure.DeleteLesson(lessons[1]))

	_, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[1])
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompletionPromotesAndIssuesCertificate(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2", "Lesson 3", "Lesson 4")
	enrollment := createEnrollment(t, db, 7, course.ID)

	var updated *courseModels.Enrollment
	var justCompleted bool
	var err error
	for _, id := range lessons {
		updated, justCompleted, err = progress.MarkLessonComplete(enrollment.ID, id)
		require.NoError(t, err)
	}

	assert.True(t, justCompleted)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, courseModels.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	var cert courseModels.Certificate
	require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).First(&cert).Error)
	assert.Equal(t, uint(7), cert.UserID)
	assert.NotEmpty(t, cert.SerialNumber)

	// Re-marking the last lesson is a no-op and must not duplicate anything.
	_, justCompleted, err = progress.MarkLessonComplete(enrollment.ID, lessons[3])
	require.NoError(t, err)
	assert.False(t, justCompleted)

	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).
		Where("enrollment_id = ?", enrollment.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecomputeFiltersStaleReferences(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2", "Lesson 3", "Lesson 4")
	enrollment := createEnrollment(t, db, 1, course.ID)

	_, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	require.NoError(t, err)
	updated, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[1])
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)

	// Deleting a completed lesson drops it from both sides of the ratio:
	// 1 of 3 remaining lessons complete.
	require.NoError(t, structure.DeleteLesson(lessons[1]))

	updated, err = progress.RecomputeProgress(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, updated.Progress)
	assert.Equal(t, 1, updated.CompletedLessons)
	assert.Equal(t, 3, updated.TotalLessons)

	// The stale id stays recorded in storage.
	var raw courseModels.Enrollment
	require.NoError(t, db.First(&raw, enrollment.ID).Error)
	assert.Len(t, raw.CompletedLessonIDs, 2)
}

func TestRecomputeFiltersLessonsOfDeletedModule(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course := createCourse(t, db, "Go Basics")
	m1 := createModule(t, structure, course.ID, "Intro")
	m2 := createModule(t, structure, course.ID, "Syntax")
	l1 := createLesson(t, structure, m1.ID, "Lesson 1")
	createLesson(t, structure, m2.ID, "Lesson 2")
	enrollment := createEnrollment(t, db, 1, course.ID)

	_, _, err := progress.MarkLessonComplete(enrollment.ID, l1.ID)
	require.NoError(t, err)

	require.NoError(t, structure.DeleteModule(m2.ID))

	updated, err := progress.RecomputeProgress(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, 1, updated.TotalLessons)
}

func TestRecomputeEmptyCourseIsZero(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course := createCourse(t, db, "Empty Course")
	createModule(t, structure, course.ID, "Placeholder")
	enrollment := createEnrollment(t, db, 1, course.ID)

	updated, err := progress.RecomputeProgress(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Progress)
	assert.Equal(t, 0, updated.TotalLessons)
	assert.Equal(t, courseModels.StatusActive, updated.Status)
}

func TestRestructureDemotesCompletedEnrollment(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, module, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2")
	enrollment := createEnrollment(t, db, 1, course.ID)

	for _, id := range lessons {
		_, _, err := progress.MarkLessonComplete(enrollment.ID, id)
		require.NoError(t, err)
	}

	// New content lands after completion; the enrollment is active again.
	createLesson(t, structure, module.ID, "Lesson 3")

	updated, err := progress.RecomputeProgress(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, updated.Progress)
	assert.Equal(t, courseModels.StatusActive, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	// The certificate from the first completion survives the demotion.
	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).
		Where("enrollment_id = ?", enrollment.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecomputeLeavesDroppedStatusAlone(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1")
	enrollment := createEnrollment(t, db, 1, course.ID)
	_, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	require.NoError(t, err)

	require.NoError(t, db.Model(&courseModels.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{"status": courseModels.StatusDropped, "version": gorm.Expr("version + 1")}).Error)

	updated, err := progress.RecomputeProgress(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusDropped, updated.Status)
	assert.Equal(t, 100, updated.Progress)
}

// forceVersionConflicts bumps the enrollment's version out of band right
// after each of the next n reads of it, so the guarded write that follows
// sees a stale version and has to retry.
func forceVersionConflicts(t *testing.T, db *gorm.DB, enrollmentID uint, n int) {
	t.Helper()
	remaining := n
	err := db.Callback().Query().After("gorm:query").Register("bump_enrollment_version", func(tx *gorm.DB) {
		if remaining == 0 {
			return
		}
		if _, ok := tx.Statement.Dest.(*courseModels.Enrollment); !ok {
			return
		}
		remaining--
		tx.Session(&gorm.Session{NewDB: true}).Model(&courseModels.Enrollment{}).
			Where("id = ?", enrollmentID).
			Update("version", gorm.Expr("version + 1"))
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Callback().Query().Remove("bump_enrollment_version")
	})
}

func TestMarkLessonCompleteRetriesOnVersionConflict(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2")
	enrollment := createEnrollment(t, db, 1, course.ID)

	forceVersionConflicts(t, db, enrollment.ID, 1)

	updated, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
	assert.Len(t, updated.CompletedLessonIDs, 1)
}

func TestRecomputeProgressRetriesOnVersionConflict(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2")
	enrollment := createEnrollment(t, db, 1, course.ID)
	_, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	require.NoError(t, err)

	// Two stale reads in a row still leave one attempt in the budget.
	forceVersionConflicts(t, db, enrollment.ID, 2)

	updated, err := progress.RecomputeProgress(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
}

func TestMarkLessonCompleteConflictExhaustion(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1")
	enrollment := createEnrollment(t, db, 1, course.ID)

	// Every read goes stale before its write; the retry budget runs out.
	forceVersionConflicts(t, db, enrollment.ID, 10)

	_, _, err := progress.MarkLessonComplete(enrollment.ID, lessons[0])
	assert.ErrorIs(t, err, store.ErrConflictRetryable)
}

func TestProgressStaysWithinBounds(t *testing.T) {
	db := openTestDB(t)
	structure := courseService.NewStructureService(db)
	progress := courseService.NewProgressService(db)

	course, _, lessons := seedCourse(t, db, structure, "Lesson 1", "Lesson 2", "Lesson 3")
	enrollment := createEnrollment(t, db, 1, course.ID)

	for _, id := range lessons {
		updated, _, err := progress.MarkLessonComplete(enrollment.ID, id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, updated.Progress, 0)
		assert.LessOrEqual(t, updated.Progress, 100)
	}

	// Deleting every lesson collapses the denominator to zero.
	for _, id := range lessons {
		require.NoError(t, structure.DeleteLesson(id))
	}
	updated, err := progress.RecomputeProgress(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Progress)
}
