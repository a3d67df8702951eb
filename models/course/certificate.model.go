package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is issued once when an enrollment first reaches COMPLETED.
// It is never revoked, even if a later restructure demotes the enrollment.
type Certificate struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	CourseID     uint      `json:"course_id" gorm:"index;not null"`
	EnrollmentID uint      `json:"enrollment_id" gorm:"index;not null"`
	SerialNumber string    `json:"serial_number" gorm:"uniqueIndex;not null"`
	IssuedAt     time.Time `json:"issued_at"`
	IsDeleted    bool      `gorm:"default:false"`
}
