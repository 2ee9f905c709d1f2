package sweeper

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskCacheSweep = "cache.sweep_expired"

type CacheSweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewCacheSweepTask(payload CacheSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheSweep, data), nil
}

func ParseCacheSweepPayload(task *asynq.Task) (CacheSweepPayload, error) {
	var payload CacheSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CacheSweepPayload{}, err
	}
	return payload, nil
}
