package config

import "time"

// QueueConfig contains worker pool configuration shared by the
// Orchestrator's plan queue and the Ingestion Job queue — grounded on
// pkg/config/queue.go.
type QueueConfig struct {
	WorkerCount             int           `yaml:"worker_count"`
	MaxConcurrent           int           `yaml:"max_concurrent"`
	PollInterval            time.Duration `yaml:"poll_interval"`
	PollIntervalJitter      time.Duration `yaml:"poll_interval_jitter"`
	Timeout                 time.Duration `yaml:"timeout"`
	HeartbeatInterval       time.Duration `yaml:"heartbeat_interval"`
	OrphanDetectionInterval time.Duration `yaml:"orphan_detection_interval"`
	OrphanThreshold         time.Duration `yaml:"orphan_threshold"`
}

// DefaultPlanQueueConfig returns the built-in defaults for the plan
// execution queue.
func DefaultPlanQueueConfig() *QueueConfig {
	return &QueueConfig{
		WorkerCount:             5,
		MaxConcurrent:           5,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		Timeout:                 2 * time.Minute,
		HeartbeatInterval:       10 * time.Second,
		OrphanDetectionInterval: 1 * time.Minute,
		OrphanThreshold:         2 * time.Minute,
	}
}

// DefaultIngestQueueConfig returns the built-in defaults for the
// ingestion job queue — fewer workers and longer timeouts than the plan
// queue, since a shallow clone and tree walk runs far longer than a
// single plan step.
func DefaultIngestQueueConfig() *QueueConfig {
	return &QueueConfig{
		WorkerCount:             2,
		MaxConcurrent:           2,
		PollInterval:            2 * time.Second,
		PollIntervalJitter:      1 * time.Second,
		Timeout:                 10 * time.Minute,
		HeartbeatInterval:       15 * time.Second,
		OrphanDetectionInterval: 2 * time.Minute,
		OrphanThreshold:         5 * time.Minute,
	}
}
