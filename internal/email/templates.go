package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type passwordResetEmailData struct {
	baseEmailData
	FullName string
}

type leadAlertEmailData struct {
	baseEmailData
	LeadAlert
}

type reportDownloadAlertEmailData struct {
	baseEmailData
	ReportDownloadAlert
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderPasswordReset(msg PasswordReset) (string, error) {
	return renderEmailTemplate("password_reset.html", passwordResetEmailData{
		baseEmailData: baseEmailData{
			Title:    subjectPasswordReset,
			Heading:  subjectPasswordReset,
			CTALabel: "Choose a new password",
			CTAURL:   msg.ResetURL,
		},
		FullName: msg.FullName,
	})
}

func renderLeadAlert(msg LeadAlert) (string, error) {
	return renderEmailTemplate("lead_alert.html", leadAlertEmailData{
		baseEmailData: baseEmailData{
			Title:      "New inspection request",
			Heading:    "New inspection request",
			Subheading: msg.PackageName,
			CTALabel:   "Open lead",
			CTAURL:     msg.LeadURL,
		},
		LeadAlert: msg,
	})
}

func renderReportDownloadAlert(msg ReportDownloadAlert) (string, error) {
	return renderEmailTemplate("report_download_alert.html", reportDownloadAlertEmailData{
		baseEmailData: baseEmailData{
			Title:   "Sample report requested",
			Heading: "Sample report requested",
		},
		ReportDownloadAlert: msg,
	})
}
