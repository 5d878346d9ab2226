package queue

import "fmt"

// GetQueueStats reports the backlog of pending watermark jobs and how many
// workers are consuming them.
func (q *QueueService) GetQueueStats() (map[string]interface{}, error) {
	if q.channel == nil {
		return nil, fmt.Errorf("queue %q: channel not available", q.queueName)
	}

	queueInfo, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue %q: %w", q.queueName, err)
	}

	return map[string]interface{}{
		"name":         queueInfo.Name,
		"pending_jobs": queueInfo.Messages,
		"workers":      queueInfo.Consumers,
	}, nil
}

// HealthCheck checks if RabbitMQ is available
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: connection closed"
	case q.channel == nil:
		return "unhealthy: channel not available"
	}
	return "healthy"
}
