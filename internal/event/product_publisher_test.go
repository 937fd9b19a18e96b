package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_NoConnectionIsUnhealthy(t *testing.T) {
	publisher := NewProductPublisher(nil)

	health := publisher.HealthCheck()

	assert.False(t, health.IsHealthy, "a publisher without a connection is unhealthy")
	assert.Equal(t, ProductEventsQueue, health.Queue)
	assert.Zero(t, health.MessagesPublished)
	assert.Zero(t, health.MessagesFailed)
}

func TestGetMetrics_ReportsQueueAndCounters(t *testing.T) {
	publisher := NewProductPublisher(nil)

	metrics := publisher.GetMetrics()

	assert.Equal(t, ProductEventsQueue, metrics["queue"])
	assert.Equal(t, int64(0), metrics["messages_published"])
	assert.Equal(t, int64(0), metrics["messages_failed"])
	assert.Contains(t, metrics, "last_publish_time")
}
