// internal/common/camunda/worker.go
package camunda

import (
	"sync"

	"bike-recommender/internal/common/config"
	"bike-recommender/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Workers opens job workers against one client and closes them together.
type Workers struct {
	client zbc.Client
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless it is disabled or already open.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	fields := map[string]interface{}{"taskType": taskType}
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", fields)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, open := w.workers[taskType]; open {
		w.logger.Warn("worker already started", fields)
		return
	}

	w.workers[taskType] = w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Count reports how many workers are open.
func (w *Workers) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.workers)
}

// Stop closes every worker and waits for in-flight jobs to finish.
func (w *Workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for taskType, jw := range w.workers {
		w.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
		delete(w.workers, taskType)
	}
}
