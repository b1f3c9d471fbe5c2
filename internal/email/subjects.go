package email

const (
	subjectPasswordReset          = "Reset your password"
	subjectLeadAlertFmt           = "New inspection request: %s (%s)"
	subjectReportDownloadAlertFmt = "Sample report requested by %s"
)
