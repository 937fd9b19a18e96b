package optimizer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"product-service/internal/config"
	"product-service/internal/models"
)

// Manager tracks in-flight optimization jobs by id so the status endpoint
// can report them after the submitting request has returned. Re-entrancy
// is deliberately unguarded at this layer: concurrent submissions are
// simply distinct entries, and disabling the trigger control while a job
// runs is the caller's concern.
type Manager struct {
	client *Client
	cfg    config.OptimizerConfig

	mu   sync.Mutex
	jobs map[string]*Job
}

func NewManager(client *Client, cfg config.OptimizerConfig) *Manager {
	return &Manager{
		client: client,
		cfg:    cfg,
		jobs:   make(map[string]*Job),
	}
}

// Submit starts a remote optimization job and begins polling it. The
// returned job is already registered; when submission itself fails the
// job is terminal Failed under a locally generated id, with no retry.
func (m *Manager) Submit(ctx context.Context, request models.OptimizeRequest) *Job {
	job := &Job{
		state: JobSubmitting,
		done:  make(chan struct{}),
	}

	taskID, err := m.client.Submit(ctx, request)
	if err != nil {
		job.taskID = uuid.NewString()
		m.register(job)
		job.finish(JobFailed, nil, false, "Failed to start optimization. Please try again.")
		slog.Error("optimization submission failed", "job_id", job.taskID, "error", err)
		return job
	}

	job.taskID = taskID
	job.setState(JobPolling)
	m.register(job)

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job.cancel = cancel
	go pollLoop(pollCtx, m.client, job, m.cfg.PollInterval, m.cfg.MaxPollAttempts)

	slog.Info("optimization job polling", "task_id", taskID, "interval", m.cfg.PollInterval)
	return job
}

// Get returns a tracked job by task id.
func (m *Manager) Get(taskID string) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[taskID]
	return job, ok
}

// Cancel discards a tracked job. The remote task keeps running; we just
// stop scheduling polls for it.
func (m *Manager) Cancel(taskID string) bool {
	job, ok := m.Get(taskID)
	if !ok {
		return false
	}
	job.Cancel()
	return true
}

func (m *Manager) register(job *Job) {
	m.mu.Lock()
	m.jobs[job.taskID] = job
	m.mu.Unlock()
}
