// Package courseService holds the course structure and progress engine:
// dense per-parent ordering of modules and lessons, collision-free reorder,
// and stale-tolerant completion percentages. Controllers translate its errors
// into HTTP responses; it never touches fiber itself.
package courseService

import (
	"errors"
	"strings"

	courseModels "lms/models/course"
	"lms/store"

	"gorm.io/gorm"
)

// StructureService implements module/lesson CRUD while keeping sibling
// positions dense and gap-free.
type StructureService struct {
	db      *gorm.DB
	modules *store.Collection[courseModels.Module, *courseModels.Module]
	lessons *store.Collection[courseModels.Lesson, *courseModels.Lesson]
}

func NewStructureService(db *gorm.DB) *StructureService {
	return &StructureService{
		db:      db,
		modules: store.NewCollection[courseModels.Module, *courseModels.Module](db, "course_id"),
		lessons: store.NewCollection[courseModels.Lesson, *courseModels.Lesson](db, "module_id"),
	}
}

// ModuleInput carries the settable module fields. Position is deliberately
// absent: ordering changes only go through ReorderModules.
type ModuleInput struct {
	Title       string
	Description string
}

// LessonInput carries the settable lesson fields. An empty MediaURL means a
// resource-only lesson. Position is deliberately absent, same as ModuleInput.
type LessonInput struct {
	Title       string
	Description string
	MediaURL    string
	Duration    int64
	Resources   []courseModels.Resource
}

// ListModules returns the course's live modules in position order.
func (s *StructureService) ListModules(courseID uint) ([]courseModels.Module, error) {
	if err := s.courseExists(courseID); err != nil {
		return nil, err
	}
	return s.modules.ListOrdered(courseID)
}

// ListLessons returns the module's live lessons in position order.
func (s *StructureService) ListLessons(moduleID uint) ([]courseModels.Lesson, error) {
	if _, err := s.liveModule(moduleID); err != nil {
		return nil, err
	}
	return s.lessons.ListOrdered(moduleID)
}

// CreateModule appends a new module at the end of the course's sequence.
func (s *StructureService) CreateModule(courseID uint, in ModuleInput) (*courseModels.Module, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := s.courseExists(courseID); err != nil {
		return nil, err
	}
	module := &courseModels.Module{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
	}
	if err := s.modules.InsertAtEnd(courseID, module); err != nil {
		return nil, err
	}
	return module, nil
}

// UpdateModule applies a partial update; empty fields are left unchanged.
// Position is not settable through this path.
func (s *StructureService) UpdateModule(moduleID uint, in ModuleInput) (*courseModels.Module, error) {
	module, err := s.liveModule(moduleID)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		module.Title = title
	}
	if in.Description != "" {
		module.Description = in.Description
	}
	if err := s.db.Save(module).Error; err != nil {
		return nil, err
	}
	return module, nil
}

// DeleteModule removes the module from its course's sequence and compacts the
// remaining modules. Owned lessons are deleted first, each compacting within
// the module, so the lesson collection stays dense at every step.
func (s *StructureService) DeleteModule(moduleID uint) error {
	module, err := s.liveModule(moduleID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		lessons := s.lessons.WithDB(tx)
		owned, err := lessons.ListOrdered(moduleID)
		if err != nil {
			return err
		}
		for i := range owned {
			if err := lessons.RemoveAndCompact(moduleID, owned[i].ID); err != nil {
				return err
			}
		}
		return s.modules.WithDB(tx).RemoveAndCompact(module.CourseID, moduleID)
	})
}

// ReorderModules applies a full permutation of the course's module ids.
func (s *StructureService) ReorderModules(courseID uint, orderedIDs []uint) ([]courseModels.Module, error) {
	if err := s.courseExists(courseID); err != nil {
		return nil, err
	}
	return s.modules.ApplyPermutation(courseID, orderedIDs)
}

// CreateLesson appends a new lesson at the end of the module's sequence.
func (s *StructureService) CreateLesson(moduleID uint, in LessonInput) (*courseModels.Lesson, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	module, err := s.liveModule(moduleID)
	if err != nil {
		return nil, err
	}
	lesson := &courseModels.Lesson{
		CourseID:    module.CourseID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		MediaURL:    in.MediaURL,
		Duration:    in.Duration,
		Resources:   in.Resources,
	}
	if err := s.lessons.InsertAtEnd(moduleID, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// UpdateLesson applies a partial update; empty fields are left unchanged and
// a nil Resources keeps the current list. Position is not settable through
// this path.
func (s *StructureService) UpdateLesson(lessonID uint, in LessonInput) (*courseModels.Lesson, error) {
	lesson, err := s.liveLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		lesson.Title = title
	}
	if in.Description != "" {
		lesson.Description = in.Description
	}
	if in.MediaURL != "" {
		lesson.MediaURL = in.MediaURL
	}
	if in.Duration > 0 {
		lesson.Duration = in.Duration
	}
	if in.Resources != nil {
		lesson.Resources = in.Resources
	}
	if err := s.db.Save(lesson).Error; err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson removes the lesson and compacts its module's sequence.
func (s *StructureService) DeleteLesson(lessonID uint) error {
	lesson, err := s.liveLesson(lessonID)
	if err != nil {
		return err
	}
	return s.lessons.RemoveAndCompact(lesson.ModuleID, lessonID)
}

// ReorderLessons applies a full permutation of the module's lesson ids.
func (s *StructureService) ReorderLessons(moduleID uint, orderedIDs []uint) ([]courseModels.Lesson, error) {
	if _, err := s.liveModule(moduleID); err != nil {
		return nil, err
	}
	return s.lessons.ApplyPermutation(moduleID, orderedIDs)
}

func (s *StructureService) courseExists(courseID uint) error {
	var course courseModels.Course
	err := s.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

func (s *StructureService) liveModule(moduleID uint) (*courseModels.Module, error) {
	var module courseModels.Module
	err := s.db.Where("id = ? AND is_deleted = ? AND position > 0", moduleID, false).First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (s *StructureService) liveLesson(lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := s.db.Where("id = ? AND is_deleted = ? AND position > 0", lessonID, false).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return store.FieldErrors{"title": "Title is required!"}
	}
	if len(strings.TrimSpace(title)) < 3 {
		return store.FieldErrors{"title": "Title must be at least 3 characters long!"}
	}
	return nil
}
