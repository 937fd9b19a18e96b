package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"product-service/internal/models"
)

// Client talks to the actuarial optimization collaborator. The service is
// opaque to us: we submit a normalized request, get a task id back, and
// afterwards only observe the job through its status endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type submitResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// StatusResponse is the raw job-status payload. Result is kept raw because
// its shape depends on the terminal status: a candidate list on success, a
// plain string error message otherwise.
type StatusResponse struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// Submit starts a remote optimization job and returns its task id.
func (c *Client) Submit(ctx context.Context, request models.OptimizeRequest) (string, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		log.Printf("Error marshaling optimize request: %v", err)
		return "", fmt.Errorf("failed to create request body")
	}

	url := fmt.Sprintf("%s/api/insure-smart/optimize", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Printf("Error creating HTTP request: %v", err)
		return "", fmt.Errorf("failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling optimizer: %v", err)
		return "", fmt.Errorf("failed to call optimizer")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading optimizer response body: %v", err)
		return "", fmt.Errorf("failed to read response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		log.Printf("Optimizer returned non-success status: %d, body: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("optimizer error: %s", string(body))
	}

	var submitResp submitResponse
	if err := json.Unmarshal(body, &submitResp); err != nil {
		log.Printf("Error unmarshaling optimizer response: %v", err)
		return "", fmt.Errorf("failed to parse response")
	}
	if submitResp.TaskID == "" {
		return "", fmt.Errorf("no task_id received from optimizer")
	}

	log.Printf("Optimization started with task ID: %s", submitResp.TaskID)
	return submitResp.TaskID, nil
}

// Status queries the job-status endpoint for a task id.
func (c *Client) Status(ctx context.Context, taskID string) (*StatusResponse, error) {
	url := fmt.Sprintf("%s/api/insure-smart/status/%s", c.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error fetching optimization status: %v", err)
		return nil, fmt.Errorf("failed to fetch optimization status")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading status response body: %v", err)
		return nil, fmt.Errorf("failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Optimizer returned non-200 status: %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("optimizer error: %s", string(body))
	}

	var statusResp StatusResponse
	if err := json.Unmarshal(body, &statusResp); err != nil {
		log.Printf("Error unmarshaling status response: %v", err)
		return nil, fmt.Errorf("failed to parse response")
	}

	return &statusResp, nil
}
