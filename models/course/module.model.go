package course

import "gorm.io/gorm"

// Module represents a section/module within a course.
//
// Position is 1-based and unique per course among live rows; a soft-deleted
// module is parked at position = -id so the live positions stay a dense 1..N.
// IsDeleted is part of the unique index so parked rows can never collide with
// the negative staging values used during a reorder.
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null;uniqueIndex:uniq_course_module_pos"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position" gorm:"not null;uniqueIndex:uniq_course_module_pos"`
	IsDeleted   bool   `gorm:"default:false;uniqueIndex:uniq_course_module_pos"`
}

func (m *Module) ChildID() uint       { return m.ID }
func (m *Module) ChildPosition() int  { return m.Position }
func (m *Module) SetPosition(pos int) { m.Position = pos }
func (m *Module) SetParentID(id uint) { m.CourseID = id }
