package utils

import (
	"log"
	"time"

	"lms/config"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/go-resty/resty/v2"
)

// NotifyCourseCompleted delivers the completion notifications: a webhook POST
// when COMPLETION_WEBHOOK_URL is configured, and a congratulation email.
// Intended to run in a goroutine; failures are logged only.
func NotifyCourseCompleted(user models.User, course courseModels.Course, enrollment courseModels.Enrollment) {
	postCompletionWebhook(user, course, enrollment)

	if err := SendCourseCompletedEmail(user, course); err != nil {
		log.Printf("Error sending completion email to %s: %v", user.Email, err)
	}
}

func postCompletionWebhook(user models.User, course courseModels.Course, enrollment courseModels.Enrollment) {
	url := config.AppConfig.CompletionWebhookURL
	if url == "" {
		return
	}

	client := resty.New().SetTimeout(10 * time.Second)

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"event":         "course.completed",
			"user_id":       user.ID,
			"user_email":    user.Email,
			"course_id":     course.ID,
			"course_title":  course.Title,
			"enrollment_id": enrollment.ID,
			"completed_at":  enrollment.CompletedAt,
		}).
		Post(url)
	if err != nil {
		log.Printf("Error posting completion webhook: %v", err)
		return
	}
	if resp.IsError() {
		log.Printf("Completion webhook returned status %d", resp.StatusCode())
	}
}
