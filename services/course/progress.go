package courseService

import (
	"errors"
	"log"
	"math"
	"time"

	courseModels "lms/models/course"
	"lms/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attempts at the optimistic version check before giving up.
const maxVersionRetries = 3

// ProgressService computes and persists enrollment progress against the
// course's current structure. Completed-lesson references that went stale
// (lesson or its module deleted since) stay in storage but are filtered out
// of both numerator and denominator; that is expected steady-state data, not
// an error.
type ProgressService struct {
	db *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// MarkLessonComplete records the lesson in the enrollment's completed set
// (idempotently) and recomputes progress. The set mutation, derived fields
// and status transition are persisted in a single guarded write; a concurrent
// writer on the same enrollment triggers a re-read and retry.
//
// The second return value reports whether this call transitioned the
// enrollment to COMPLETED, so the caller can fire notifications.
func (s *ProgressService) MarkLessonComplete(enrollmentID, lessonID uint) (*courseModels.Enrollment, bool, error) {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		enrollment, err := s.liveEnrollment(enrollmentID)
		if err != nil {
			return nil, false, err
		}

		var lesson courseModels.Lesson
		err = s.db.
			Where("id = ? AND course_id = ? AND is_deleted = ? AND position > 0", lessonID, enrollment.CourseID, false).
			First(&lesson).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, store.ErrNotFound
		}
		if err != nil {
			return nil, false, err
		}

		if !enrollment.HasCompleted(lessonID) {
			enrollment.CompletedLessonIDs = append(enrollment.CompletedLessonIDs, lessonID)
		}

		completed, err := s.recompute(enrollment)
		if err != nil {
			return nil, false, err
		}

		persisted, err := s.persist(enrollment)
		if err != nil {
			return nil, false, err
		}
		if !persisted {
			continue
		}
		if completed {
			s.issueCertificate(enrollment)
		}
		return enrollment, completed, nil
	}
	return nil, false, store.ErrConflictRetryable
}

// RecomputeProgress re-derives the enrollment's percentage from the course's
// current structure, e.g. after lessons were deleted or modules restructured.
// Dropping below 100% demotes COMPLETED back to ACTIVE.
func (s *ProgressService) RecomputeProgress(enrollmentID uint) (*courseModels.Enrollment, error) {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		enrollment, err := s.liveEnrollment(enrollmentID)
		if err != nil {
			return nil, err
		}
		completed, err := s.recompute(enrollment)
		if err != nil {
			return nil, err
		}
		persisted, err := s.persist(enrollment)
		if err != nil {
			return nil, err
		}
		if !persisted {
			continue
		}
		if completed {
			s.issueCertificate(enrollment)
		}
		return enrollment, nil
	}
	return nil, store.ErrConflictRetryable
}

// recompute refreshes the derived fields on enrollment in place and reports
// whether this recomputation transitioned it to COMPLETED.
func (s *ProgressService) recompute(enrollment *courseModels.Enrollment) (bool, error) {
	eligible, err := s.eligibleLessonIDs(enrollment.CourseID)
	if err != nil {
		return false, err
	}

	valid := 0
	for _, id := range enrollment.CompletedLessonIDs {
		if eligible[id] {
			valid++
		}
	}

	enrollment.TotalLessons = len(eligible)
	enrollment.CompletedLessons = valid
	enrollment.Progress = computePercent(valid, len(eligible))

	now := time.Now()
	justCompleted := false
	switch {
	case enrollment.Progress == 100 && enrollment.Status == courseModels.StatusActive:
		enrollment.Status = courseModels.StatusCompleted
		enrollment.CompletedAt = &now
		justCompleted = true
	case enrollment.Progress < 100 && enrollment.Status == courseModels.StatusCompleted:
		enrollment.Status = courseModels.StatusActive
		enrollment.CompletedAt = nil
	}
	enrollment.LastAccessed = &now
	return justCompleted, nil
}

// persist writes the completed set, derived fields and status as one guarded
// update. Returns false when a concurrent writer bumped the version first.
func (s *ProgressService) persist(enrollment *courseModels.Enrollment) (bool, error) {
	res := s.db.Model(&courseModels.Enrollment{}).
		Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
		Updates(map[string]interface{}{
			"completed_lesson_ids": enrollment.CompletedLessonIDs,
			"completed_lessons":    enrollment.CompletedLessons,
			"total_lessons":        enrollment.TotalLessons,
			"progress":             enrollment.Progress,
			"status":               enrollment.Status,
			"completed_at":         enrollment.CompletedAt,
			"last_accessed":        enrollment.LastAccessed,
			"version":              enrollment.Version + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	enrollment.Version++
	return true, nil
}

// eligibleLessonIDs returns the ids of lessons currently reachable from the
// course: live lessons whose module is also live. This is the progress
// denominator.
func (s *ProgressService) eligibleLessonIDs(courseID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.is_deleted = ? AND modules.position > 0", false).
		Where("lessons.course_id = ? AND lessons.is_deleted = ? AND lessons.position > 0", courseID, false).
		Pluck("lessons.id", &ids).Error
	if err != nil {
		return nil, err
	}
	eligible := make(map[uint]bool, len(ids))
	for _, id := range ids {
		eligible[id] = true
	}
	return eligible, nil
}

// issueCertificate creates the enrollment's certificate if none exists yet.
// Certificates are issue-once and survive a later demotion. Failures are
// logged, not surfaced: the progress write already succeeded.
func (s *ProgressService) issueCertificate(enrollment *courseModels.Enrollment) {
	var existing courseModels.Certificate
	err := s.db.
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", enrollment.UserID, enrollment.CourseID, false).
		First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking existing certificate for enrollment %d: %v", enrollment.ID, err)
		return
	}
	cert := courseModels.Certificate{
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		EnrollmentID: enrollment.ID,
		SerialNumber: uuid.NewString(),
		IssuedAt:     time.Now(),
	}
	if err := s.db.Create(&cert).Error; err != nil {
		log.Printf("Error issuing certificate for enrollment %d: %v", enrollment.ID, err)
	}
}

func (s *ProgressService) liveEnrollment(enrollmentID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := s.db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// computePercent rounds to the nearest integer, halves away from zero
// (math.Round). A course with no eligible lessons yields 0, never an error.
func computePercent(valid, eligible int) int {
	if eligible == 0 {
		return 0
	}
	return int(math.Round(100 * float64(valid) / float64(eligible)))
}
