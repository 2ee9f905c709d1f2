package sweeper

import (
	"context"
	"fmt"

	"tripgate_backend/internal/search/repository"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	cache  *repository.Repo
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		cache:  repository.New(pool),
		log:    log,
	}

	mux.HandleFunc(TaskCacheSweep, w.handleCacheSweep)

	return w, nil
}

func (w *Worker) handleCacheSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCacheSweepPayload(task)
	if err != nil {
		return err
	}

	removed, err := w.cache.DeleteExpired(ctx)
	if err != nil {
		return err
	}

	w.log.Info("cache sweep completed",
		"removed", removed,
		"requested_at", payload.RequestedAt,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("sweeper worker stopped", "error", err)
	}
}
