package scheduler

import (
	"context"
	"fmt"

	"inspection_portal/internal/email"
	"inspection_portal/platform/config"
	"inspection_portal/platform/logger"

	"github.com/hibiken/asynq"
)

const defaultConcurrency = 10

// Worker consumes queued email deliveries.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}

	w := &Worker{sender: sender, log: log}
	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(w.reportError),
	})
	w.mux = w.routes()

	return w, nil
}

func (w *Worker) routes() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPasswordResetEmail, w.handlePasswordResetEmail)
	mux.HandleFunc(TaskLeadAlertEmail, w.handleLeadAlertEmail)
	mux.HandleFunc(TaskReportDownloadAlertEmail, w.handleReportDownloadAlertEmail)
	return mux
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("scheduler worker stopped: %w", err)
	}
	return nil
}

func (w *Worker) reportError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	w.log.Error("task failed",
		"task", task.Type(),
		"retry", retried,
		"max_retry", maxRetry,
		"error", err,
	)
}

func (w *Worker) handlePasswordResetEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := parsePayload[email.PasswordReset](task)
	if err != nil {
		return err
	}
	return w.sender.SendPasswordResetEmail(ctx, payload)
}

func (w *Worker) handleLeadAlertEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := parsePayload[email.LeadAlert](task)
	if err != nil {
		return err
	}
	return w.sender.SendLeadAlertEmail(ctx, payload)
}

func (w *Worker) handleReportDownloadAlertEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := parsePayload[email.ReportDownloadAlert](task)
	if err != nil {
		return err
	}
	return w.sender.SendReportDownloadAlertEmail(ctx, payload)
}
