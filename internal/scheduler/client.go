package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"inspection_portal/internal/email"
	"inspection_portal/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	defaultQueue  = "default"
	emailMaxRetry = 5
	emailTimeout  = time.Minute
)

// Client enqueues email deliveries for the worker. It satisfies email.Sender
// so the notification module can use it in place of a direct sender.
type Client struct {
	client *asynq.Client
	queue  string
}

var _ email.Sender = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) SendPasswordResetEmail(ctx context.Context, msg email.PasswordReset) error {
	task, err := NewPasswordResetEmailTask(msg)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) SendLeadAlertEmail(ctx context.Context, msg email.LeadAlert) error {
	task, err := NewLeadAlertEmailTask(msg)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) SendReportDownloadAlertEmail(ctx context.Context, msg email.ReportDownloadAlert) error {
	task, err := NewReportDownloadAlertEmailTask(msg)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(emailMaxRetry),
		asynq.Timeout(emailTimeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return defaultQueue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
