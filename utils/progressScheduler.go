package utils

import (
	"log"
	"strconv"
	"time"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"
	courseService "lms/services/course"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[PROGRESS-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// reconcileEnrollmentProgress recomputes cached progress for every non-dropped
// enrollment. Course restructuring (deleted lessons, removed modules) can
// leave cached percentages stale until the next completion event; this sweep
// catches enrollments nobody touched in the meantime.
func reconcileEnrollmentProgress() {
	db := database.Database.Db
	progress := courseService.NewProgressService(db)

	var enrollments []courseModels.Enrollment
	err := db.Where("status <> ? AND is_deleted = ?", courseModels.StatusDropped, false).Find(&enrollments).Error
	if err != nil {
		logScheduler("Error fetching enrollments: " + err.Error())
		return
	}

	updated := 0
	for _, enrollment := range enrollments {
		before := enrollment.Progress
		after, err := progress.RecomputeProgress(enrollment.ID)
		if err != nil {
			logScheduler("Error recomputing enrollment: " + err.Error())
			continue
		}
		if after.Progress != before {
			updated++
		}
	}
	logScheduler("Reconciliation done, enrollments with changed progress: " + strconv.Itoa(updated))
}

// StartProgressScheduler starts the periodic progress reconciliation sweep
func StartProgressScheduler() *cron.Cron {
	c := cron.New()

	spec := config.AppConfig.ProgressCronSpec
	if _, err := c.AddFunc(spec, reconcileEnrollmentProgress); err != nil {
		log.Fatalf("Invalid PROGRESS_CRON_SPEC %q: %v", spec, err)
	}

	c.Start()
	logScheduler("Started with spec " + spec)
	return c
}
