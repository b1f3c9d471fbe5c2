// Package email renders and delivers transactional emails.
package email

import "context"

// PasswordReset is the reset-link email sent to a staff member.
type PasswordReset struct {
	To       string `json:"to"`
	FullName string `json:"fullName"`
	ResetURL string `json:"resetUrl"`
}

// LeadAlert tells the sales inbox about a new calculator submission.
type LeadAlert struct {
	To           string `json:"to"`
	LeadID       string `json:"leadId"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PackageName  string `json:"packageName"`
	CityName     string `json:"cityName"`
	Neighborhood string `json:"neighborhood"`
	TotalArea    string `json:"totalArea"`
	FinalPrice   string `json:"finalPrice"`
	LeadURL      string `json:"leadUrl"`
}

// ReportDownloadAlert tells the sales inbox about a sample-report request.
type ReportDownloadAlert struct {
	To         string `json:"to"`
	DownloadID string `json:"downloadId"`
	Phone      string `json:"phone"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Source     string `json:"source"`
}

type Sender interface {
	SendPasswordResetEmail(ctx context.Context, msg PasswordReset) error
	SendLeadAlertEmail(ctx context.Context, msg LeadAlert) error
	SendReportDownloadAlertEmail(ctx context.Context, msg ReportDownloadAlert) error
}

// NoopSender drops every email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendPasswordResetEmail(context.Context, PasswordReset) error             { return nil }
func (NoopSender) SendLeadAlertEmail(context.Context, LeadAlert) error                     { return nil }
func (NoopSender) SendReportDownloadAlertEmail(context.Context, ReportDownloadAlert) error { return nil }

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
