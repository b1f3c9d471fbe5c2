// Package notification turns domain events into emails for staff.
package notification

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"inspection_portal/internal/email"
	"inspection_portal/internal/events"
	"inspection_portal/platform/config"
	"inspection_portal/platform/logger"
)

// Module subscribes to domain events and hands emails to the sender, which
// is either the asynq client (queued) or an SMTP sender (inline).
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.PasswordResetRequested{}.EventName(), m)
	bus.Subscribe(events.LeadSubmitted{}.EventName(), m)
	bus.Subscribe(events.ReportDownloadRequested{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.PasswordResetRequested:
		return m.handlePasswordResetRequested(ctx, e)
	case events.LeadSubmitted:
		return m.handleLeadSubmitted(ctx, e)
	case events.ReportDownloadRequested:
		return m.handleReportDownloadRequested(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handlePasswordResetRequested(ctx context.Context, e events.PasswordResetRequested) error {
	msg := email.PasswordReset{
		To:       e.Email,
		FullName: e.FullName,
		ResetURL: m.buildURL("/reset-password", url.Values{"token": {e.ResetToken}}),
	}
	if err := m.sender.SendPasswordResetEmail(ctx, msg); err != nil {
		m.log.Error("failed to send password reset email",
			"userId", e.UserID,
			"email", e.Email,
			"error", err,
		)
		return err
	}
	m.log.Info("password reset email dispatched", "userId", e.UserID, "email", e.Email)
	return nil
}

func (m *Module) handleLeadSubmitted(ctx context.Context, e events.LeadSubmitted) error {
	recipients := m.cfg.GetSalesNotificationEmails()
	if len(recipients) == 0 {
		m.log.Debug("no sales recipients configured, skipping lead alert", "leadId", e.LeadID)
		return nil
	}

	leadURL := m.buildURL("/leads/"+e.LeadID.String(), nil)
	var errs []error
	for _, to := range recipients {
		err := m.sender.SendLeadAlertEmail(ctx, email.LeadAlert{
			To:           to,
			LeadID:       e.LeadID.String(),
			FullName:     e.FullName,
			Email:        e.Email,
			Phone:        e.Phone,
			PackageName:  e.PackageName,
			CityName:     e.CityName,
			Neighborhood: e.Neighborhood,
			TotalArea:    e.TotalArea,
			FinalPrice:   e.FinalPrice,
			LeadURL:      leadURL,
		})
		if err != nil {
			m.log.Error("failed to send lead alert", "leadId", e.LeadID, "to", to, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Module) handleReportDownloadRequested(ctx context.Context, e events.ReportDownloadRequested) error {
	var errs []error
	for _, to := range m.cfg.GetSalesNotificationEmails() {
		err := m.sender.SendReportDownloadAlertEmail(ctx, email.ReportDownloadAlert{
			To:         to,
			DownloadID: e.DownloadID.String(),
			Phone:      e.Phone,
			FullName:   e.FullName,
			Email:      e.Email,
			Source:     e.Source,
		})
		if err != nil {
			m.log.Error("failed to send report download alert", "downloadId", e.DownloadID, "to", to, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Module) buildURL(path string, query url.Values) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	if len(query) == 0 {
		return base + path
	}
	return base + path + "?" + query.Encode()
}

var _ events.Handler = (*Module)(nil)
