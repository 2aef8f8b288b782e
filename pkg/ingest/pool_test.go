package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testIngestConfig() *Config {
	return &Config{
		WorkerCount:             2,
		MaxConcurrentJobs:       2,
		PollInterval:            1 * time.Second,
		PollIntervalJitter:      500 * time.Millisecond,
		JobTimeout:              10 * time.Minute,
		HeartbeatInterval:       15 * time.Second,
		OrphanDetectionInterval: 1 * time.Minute,
		OrphanThreshold:         5 * time.Minute,
		CloneDir:                "/tmp",
	}
}

func TestPollInterval_WithinJitterBounds(t *testing.T) {
	p := NewWorkerPool("pod-1", nil, testIngestConfig())
	for i := 0; i < 100; i++ {
		d := p.pollInterval()
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestPollInterval_NoJitter(t *testing.T) {
	cfg := testIngestConfig()
	cfg.PollIntervalJitter = 0
	p := NewWorkerPool("pod-1", nil, cfg)

	for i := 0; i < 10; i++ {
		assert.Equal(t, 1*time.Second, p.pollInterval())
	}
}
