// Package sweeper removes expired search cache rows on a schedule. Reads
// never serve expired entries; the sweep only keeps the table from growing
// without bound.
package sweeper

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Dispatcher enqueues a sweep task on a fixed interval.
type Dispatcher struct {
	client   *asynq.Client
	queue    string
	interval time.Duration
	log      *logger.Logger
}

func NewDispatcher(cfg config.SchedulerConfig, log *logger.Logger) (*Dispatcher, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	interval := cfg.GetCacheSweepInterval()
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Dispatcher{
		client:   asynq.NewClient(opt),
		queue:    queue,
		interval: interval,
		log:      log,
	}, nil
}

func (d *Dispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		task, err := NewCacheSweepTask(CacheSweepPayload{RequestedAt: time.Now()})
		if err != nil {
			d.log.Warn("cache sweep task build failed", "error", err)
			continue
		}

		// Unique per interval: overlapping ticks collapse into one sweep.
		_, err = d.client.EnqueueContext(ctx, task,
			asynq.Queue(d.queue),
			asynq.Unique(d.interval),
		)
		if err != nil && err != asynq.ErrDuplicateTask {
			d.log.Warn("cache sweep enqueue failed", "error", err)
		}
	}
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
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
