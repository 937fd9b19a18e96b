package optimizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"product-service/internal/config"
	"product-service/internal/models"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// optimizerStub scripts the remote optimizer: submission always succeeds
// and each status poll consumes the next scripted response.
type optimizerStub struct {
	statusCalls atomic.Int64
	responses   []map[string]any
	server      *httptest.Server
}

func newOptimizerStub(responses ...map[string]any) *optimizerStub {
	stub := &optimizerStub{responses: responses}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{
				"message": "Optimization started",
				"task_id": "task-123",
			})
			return
		}

		call := stub.statusCalls.Add(1)
		idx := int(call) - 1
		if idx >= len(stub.responses) {
			idx = len(stub.responses) - 1
		}
		json.NewEncoder(w).Encode(stub.responses[idx])
	}))
	return stub
}

func (s *optimizerStub) Close() { s.server.Close() }

func testConfig(maxAttempts int) config.OptimizerConfig {
	return config.OptimizerConfig{
		PollInterval:    5 * time.Millisecond,
		MaxPollAttempts: maxAttempts,
	}
}

func statusBody(status string, result any) map[string]any {
	return map[string]any{"task_id": "task-123", "status": status, "result": result}
}

func waitDone(t *testing.T, job *Job) Outcome {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not reach a terminal state in time")
	}
	return job.Snapshot()
}

// ============================================================================
// POLLING LIFECYCLE
// ============================================================================

func TestJob_StartedThenSuccess(t *testing.T) {
	stub := newOptimizerStub(
		statusBody("STARTED", nil),
		statusBody("SUCCESS", []map[string]any{
			{"premiumRate": 0.085, "premiumCost": 21.25, "riskLevel": "MEDIUM RISK"},
			{"premiumRate": 0.09, "premiumCost": 22.5, "riskLevel": "LOW RISK"},
		}),
	)
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.Equal(t, JobSucceeded, outcome.State)
	assert.Equal(t, "task-123", outcome.TaskID)
	assert.False(t, outcome.NoViableConfig)
	assert.Equal(t, 2, outcome.Polls, "one in-flight poll plus the terminal poll")
	assert.Equal(t, int64(2), stub.statusCalls.Load(), "no further polls after the terminal status")

	assert.Len(t, outcome.Results, 2)
	assert.Equal(t, "1", outcome.Results[0].ID, "candidates without ids get positional ones")
	assert.Equal(t, "2", outcome.Results[1].ID)
	assert.Equal(t, 0.085, outcome.Results[0].PremiumRate)
}

func TestJob_CaseInsensitiveInFlightStatuses(t *testing.T) {
	stub := newOptimizerStub(
		statusBody("Pending", nil),
		statusBody("started", nil),
		statusBody("success", []map[string]any{{"premiumRate": 0.08}}),
	)
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.Equal(t, JobSucceeded, outcome.State)
	assert.Equal(t, 3, outcome.Polls, "mixed-case statuses are recognized")
}

func TestJob_NoViableConfiguration(t *testing.T) {
	stub := newOptimizerStub(
		statusBody("SUCCESS", []map[string]any{
			{"error": "No viable configuration found. Try adjusting your inputs."},
		}),
	)
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.Equal(t, JobSucceeded, outcome.State, "an error marker is still a completed job")
	assert.True(t, outcome.NoViableConfig)
	assert.Empty(t, outcome.Results)
	assert.Equal(t, "No viable configuration found. Try adjusting your inputs.", outcome.Message)
}

func TestJob_RemoteFailure(t *testing.T) {
	stub := newOptimizerStub(
		statusBody("FAILURE", "weather data unavailable"),
	)
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.Equal(t, JobFailed, outcome.State)
	assert.Equal(t, "Optimization failed: weather data unavailable", outcome.Message)
}

func TestJob_RemoteFailureWithoutMessage(t *testing.T) {
	stub := newOptimizerStub(
		statusBody("FAILURE", nil),
	)
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.Equal(t, JobFailed, outcome.State)
	assert.Equal(t, "Optimization failed: Unknown error", outcome.Message)
}

func TestJob_StatusEndpointUnreachable(t *testing.T) {
	var submitted atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			submitted.Store(true)
			json.NewEncoder(w).Encode(map[string]string{"task_id": "task-123"})
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	manager := NewManager(NewClient(server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.True(t, submitted.Load())
	assert.Equal(t, JobFailed, outcome.State, "a poll error fails the job outright, no retry")
	assert.Equal(t, "Error checking optimization status. Please try again.", outcome.Message)
}

func TestJob_PollingBudgetExceeded(t *testing.T) {
	stub := newOptimizerStub(statusBody("PENDING", nil))
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(3))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.Equal(t, JobFailed, outcome.State)
	assert.Equal(t, 3, outcome.Polls, "the loop stops at the attempt bound")
	assert.Equal(t, "Optimization did not finish within the polling budget.", outcome.Message)
}

// ============================================================================
// SUBMISSION FAILURE & CANCELLATION
// ============================================================================

func TestManagerSubmit_SubmissionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	manager := NewManager(NewClient(server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})
	outcome := waitDone(t, job)

	assert.Equal(t, JobFailed, outcome.State, "submission failure is immediately terminal")
	assert.Equal(t, "Failed to start optimization. Please try again.", outcome.Message)
	assert.Equal(t, 0, outcome.Polls, "a job that never started is never polled")
	assert.NotEmpty(t, job.TaskID(), "failed submissions still get a local id")

	tracked, ok := manager.Get(job.TaskID())
	assert.True(t, ok, "failed jobs stay queryable")
	assert.Equal(t, JobFailed, tracked.Snapshot().State)
}

func TestManagerCancel(t *testing.T) {
	stub := newOptimizerStub(statusBody("PENDING", nil))
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(0))
	job := manager.Submit(context.Background(), models.OptimizeRequest{})

	assert.True(t, manager.Cancel(job.TaskID()))
	outcome := waitDone(t, job)
	assert.Equal(t, JobCancelled, outcome.State)

	// The loop must stop issuing status requests once cancelled.
	settled := stub.statusCalls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, stub.statusCalls.Load(), "no polls after cancellation")
}

func TestManagerCancel_UnknownTask(t *testing.T) {
	stub := newOptimizerStub(statusBody("PENDING", nil))
	defer stub.Close()

	manager := NewManager(NewClient(stub.server.URL), testConfig(0))

	assert.False(t, manager.Cancel("nope"))
}

func TestJob_SurvivesRequestContextCancellation(t *testing.T) {
	stub := newOptimizerStub(
		statusBody("STARTED", nil),
		statusBody("SUCCESS", []map[string]any{{"premiumRate": 0.085}}),
	)
	defer stub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	manager := NewManager(NewClient(stub.server.URL), testConfig(0))
	job := manager.Submit(ctx, models.OptimizeRequest{})
	cancel() // the HTTP request that triggered the job ends here

	outcome := waitDone(t, job)
	assert.Equal(t, JobSucceeded, outcome.State, "polling is detached from the request context")
}
