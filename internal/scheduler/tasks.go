package scheduler

import (
	"encoding/json"
	"fmt"

	"inspection_portal/internal/email"

	"github.com/hibiken/asynq"
)

const (
	TaskPasswordResetEmail       = "email.password_reset"
	TaskLeadAlertEmail           = "email.lead_alert"
	TaskReportDownloadAlertEmail = "email.report_download_alert"
)

func NewPasswordResetEmailTask(payload email.PasswordReset) (*asynq.Task, error) {
	return newTask(TaskPasswordResetEmail, payload)
}

func NewLeadAlertEmailTask(payload email.LeadAlert) (*asynq.Task, error) {
	return newTask(TaskLeadAlertEmail, payload)
}

func NewReportDownloadAlertEmailTask(payload email.ReportDownloadAlert) (*asynq.Task, error) {
	return newTask(TaskReportDownloadAlertEmail, payload)
}

func newTask(name string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(name, data), nil
}

// parsePayload decodes a task payload. Malformed payloads are never retried.
func parsePayload[T any](task *asynq.Task) (T, error) {
	var payload T
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return payload, nil
}
