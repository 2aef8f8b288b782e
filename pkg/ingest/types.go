// Package ingest implements the Ingestion Job Queue (§4.11): a second
// worker pool, shaped like pkg/queue's, that claims queued IngestionJob
// rows, shallow-clones the target repository, and extracts structural
// metadata for diagram generation.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoJobsAvailable is returned when no queued ingestion job could be claimed.
var ErrNoJobsAvailable = errors.New("no ingestion jobs available")

// ErrAtCapacity is returned when the pod is already processing its configured maximum.
var ErrAtCapacity = errors.New("ingestion queue at capacity")

// Config controls ingestion worker pool behavior, mirroring
// pkg/queue.Config but scoped to ingestion jobs.
type Config struct {
	WorkerCount             int
	MaxConcurrentJobs       int
	JobTimeout              time.Duration
	PollInterval            time.Duration
	PollIntervalJitter      time.Duration
	HeartbeatInterval       time.Duration
	OrphanDetectionInterval time.Duration
	OrphanThreshold         time.Duration
	CloneDir                string
}

// Metadata is the structural summary produced by a successful ingestion,
// stored in IngestionJob.result.
type Metadata struct {
	ModulePath   string            `json:"module_path,omitempty"`
	README       string            `json:"readme,omitempty"`
	Manifests    []string          `json:"manifests"`
	Dockerfiles  []string          `json:"dockerfiles"`
	CIConfigs    []string          `json:"ci_configs"`
	ImportGraph  map[string][]string `json:"import_graph"`
	PackageCount int               `json:"package_count"`
}

// toResultMap round-trips Metadata through JSON into the
// map[string]interface{} shape ent.JSON fields expect, the same
// deep-copy-via-JSON idiom used by pkg/ir/copy.go.
func toResultMap(md *Metadata) (map[string]interface{}, error) {
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("marshaling ingestion metadata: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling ingestion metadata: %w", err)
	}
	return m, nil
}
