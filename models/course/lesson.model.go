package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Resource is an attachment on a lesson. Kind is PDF, LINK or FILE.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Kind  string `json:"kind"`
}

// Lesson represents a single lesson within a module.
//
// An empty MediaURL means a resource-only lesson. Position follows the same
// rules as Module.Position (dense 1..N per live module, deleted rows parked
// at -id).
type Lesson struct {
	gorm.Model
	ModuleID    uint                          `json:"module_id" gorm:"index;not null;uniqueIndex:uniq_module_lesson_pos"`
	CourseID    uint                          `json:"course_id" gorm:"index;not null"`
	Title       string                        `json:"title"`
	Description string                        `json:"description"`
	MediaURL    string                        `json:"media_url"`
	Duration    int64                         `json:"duration" gorm:"default:0"` // duration in minutes
	Position    int                           `json:"position" gorm:"not null;uniqueIndex:uniq_module_lesson_pos"`
	Resources   datatypes.JSONSlice[Resource] `json:"resources"`
	IsDeleted   bool                          `gorm:"default:false;uniqueIndex:uniq_module_lesson_pos"`
}

func (l *Lesson) ChildID() uint       { return l.ID }
func (l *Lesson) ChildPosition() int  { return l.Position }
func (l *Lesson) SetPosition(pos int) { l.Position = pos }
func (l *Lesson) SetParentID(id uint) { l.ModuleID = id }
