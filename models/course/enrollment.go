package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment status values. ACTIVE -> COMPLETED happens automatically when
// progress reaches 100%; COMPLETED -> ACTIVE happens when a restructured
// course drops recomputed progress below 100%. DROPPED transitions are
// external and never touched by the progress engine.
const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusDropped   = "DROPPED"
)

// Enrollment tracks a user's enrollment in a course with progress.
//
// CompletedLessonIDs may contain stale references to lessons that were deleted
// after being completed; those are kept in storage and filtered out when
// progress is recomputed. Version guards the read-modify-write of the
// completed set against concurrent writers.
type Enrollment struct {
	gorm.Model
	UserID             uint                      `json:"user_id" gorm:"not null;index;uniqueIndex:uniq_user_course"`
	CourseID           uint                      `json:"course_id" gorm:"not null;index;uniqueIndex:uniq_user_course"`
	Status             string                    `json:"status" gorm:"default:'ACTIVE'"`
	Progress           int                       `json:"progress" gorm:"default:0"` // completion percentage (0-100)
	CompletedLessonIDs datatypes.JSONSlice[uint] `json:"completed_lesson_ids"`
	CompletedLessons   int                       `json:"completed_lessons" gorm:"default:0"`
	TotalLessons       int                       `json:"total_lessons" gorm:"default:0"`
	CompletedAt        *time.Time                `json:"completed_at"`
	LastAccessed       *time.Time                `json:"last_accessed"`
	Version            int                       `json:"-" gorm:"default:0"`
	IsDeleted          bool                      `gorm:"default:false"`
}

// HasCompleted reports whether the lesson is already in the completed set.
func (e *Enrollment) HasCompleted(lessonID uint) bool {
	for _, id := range e.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}
