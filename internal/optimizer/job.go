package optimizer

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"product-service/internal/models"
)

// JobState is the lifecycle of one optimization job as observed locally.
type JobState string

const (
	JobIdle       JobState = "idle"
	JobSubmitting JobState = "submitting"
	JobPolling    JobState = "polling"
	JobSucceeded  JobState = "succeeded"
	JobFailed     JobState = "failed"
	JobCancelled  JobState = "cancelled"
)

func (s JobState) Terminal() bool {
	switch s {
	case JobSucceeded, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

// Outcome is a caller-visible snapshot of a job. A job that reached
// Succeeded but carried an error marker instead of candidates has
// NoViableConfig set: the optimizer finished and reported that no
// configuration satisfies the constraints, which is a user-facing
// condition distinct from a transport failure.
type Outcome struct {
	TaskID         string                      `json:"task_id"`
	State          JobState                    `json:"state"`
	Results        []models.OptimizationResult `json:"results,omitempty"`
	NoViableConfig bool                        `json:"no_viable_config,omitempty"`
	Message        string                      `json:"message,omitempty"`
	Polls          int                         `json:"polls"`
}

// Job is an explicit state value for one remote optimization task. All
// transitions happen on the single poll goroutine; Snapshot is safe from
// any goroutine. Cancelling is a data operation: dropping the context
// stops the loop, and the remote job is abandoned, not aborted.
type Job struct {
	taskID string
	cancel context.CancelFunc

	mu       sync.Mutex
	state    JobState
	results  []models.OptimizationResult
	noViable bool
	message  string
	polls    int

	done chan struct{}
}

func (j *Job) TaskID() string { return j.taskID }

// Done is closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) Snapshot() Outcome {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Outcome{
		TaskID:         j.taskID,
		State:          j.state,
		Results:        j.results,
		NoViableConfig: j.noViable,
		Message:        j.message,
		Polls:          j.polls,
	}
}

// Cancel stops the poll loop. No further status requests are issued once
// the loop observes the cancellation; an already-terminal job is left
// untouched.
func (j *Job) Cancel() {
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *Job) setState(state JobState) {
	j.mu.Lock()
	j.state = state
	j.mu.Unlock()
}

func (j *Job) countPoll() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.polls++
	return j.polls
}

func (j *Job) finish(state JobState, results []models.OptimizationResult, noViable bool, message string) {
	j.mu.Lock()
	if j.state.Terminal() {
		j.mu.Unlock()
		return
	}
	j.state = state
	j.results = results
	j.noViable = noViable
	j.message = message
	j.mu.Unlock()
	close(j.done)
}

// jobStatusInFlight reports whether a remote status means the job is still
// running. The optimizer has been observed to vary casing ("PENDING" vs
// "Pending"), so the comparison is case-insensitive.
func jobStatusInFlight(status string) bool {
	return strings.EqualFold(status, "PENDING") || strings.EqualFold(status, "STARTED")
}

// decodeSuccessResult interprets a SUCCESS payload. The result list is
// captured verbatim apart from assigning selection ids; a payload whose
// first element is an error marker means the optimizer found no viable
// configuration.
func decodeSuccessResult(raw json.RawMessage) (results []models.OptimizationResult, noViable bool, message string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false, ""
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, true, "optimizer returned an unreadable result"
	}
	if len(results) > 0 && results[0].Error != "" {
		return nil, true, results[0].Error
	}
	for i := range results {
		if results[i].ID == "" {
			results[i].ID = strconv.Itoa(i + 1)
		}
	}
	return results, false, ""
}

// decodeFailureResult extracts a human-readable message from a non-success
// terminal payload, which the optimizer sends as a plain string.
func decodeFailureResult(raw json.RawMessage) string {
	var message string
	if len(raw) > 0 && json.Unmarshal(raw, &message) == nil && message != "" {
		return "Optimization failed: " + message
	}
	return "Optimization failed: Unknown error"
}

// pollLoop drives one job to a terminal state. The next poll is armed only
// after the previous one resolves, so status requests for a job never
// overlap and responses are consumed in request order.
func pollLoop(ctx context.Context, client *Client, job *Job, interval time.Duration, maxAttempts int) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			job.finish(JobCancelled, nil, false, "optimization discarded by caller")
			return
		case <-timer.C:
		}

		status, err := client.Status(ctx, job.taskID)
		if err != nil {
			if ctx.Err() != nil {
				job.finish(JobCancelled, nil, false, "optimization discarded by caller")
			} else {
				job.finish(JobFailed, nil, false, "Error checking optimization status. Please try again.")
			}
			return
		}
		polls := job.countPoll()

		switch {
		case jobStatusInFlight(status.Status):
			if maxAttempts > 0 && polls >= maxAttempts {
				job.finish(JobFailed, nil, false, "Optimization did not finish within the polling budget.")
				return
			}
			timer.Reset(interval)

		case strings.EqualFold(status.Status, "SUCCESS"):
			results, noViable, message := decodeSuccessResult(status.Result)
			job.finish(JobSucceeded, results, noViable, message)
			return

		default:
			job.finish(JobFailed, nil, false, decodeFailureResult(status.Result))
			return
		}
	}
}
