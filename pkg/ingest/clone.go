package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/diagramaut/diagramaut/pkg/apierr"
)

// CloneResult is the outcome of a shallow clone.
type CloneResult struct {
	Dir        string
	CommitHash string
}

// ShallowClone clones repoURL at depth 1 into a subdirectory of destDir
// and resolves the checked-out commit hash. Grounded on
// pkg/runbook/github.go's GitHub Contents API fetch — extended here with
// a real shallow clone since this spec needs a full tree walk, not a
// single raw-content fetch.
func ShallowClone(ctx context.Context, repoURL, destDir string, timeout time.Duration) (*CloneResult, error) {
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	cloneCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cloneCtx, "git", "clone", "--depth", "1", repoURL, destDir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cloneCtx.Err() != nil {
			return nil, apierr.New(apierr.IngestFailed, fmt.Sprintf("clone of %q timed out: %v", repoURL, cloneCtx.Err()))
		}
		return nil, apierr.New(apierr.IngestFailed, fmt.Sprintf("clone of %q failed: %v, stderr: %s", repoURL, err, stderr.String()))
	}

	commitHash, err := resolveHead(ctx, destDir)
	if err != nil {
		return nil, apierr.New(apierr.IngestFailed, fmt.Sprintf("resolving HEAD for %q: %v", repoURL, err))
	}

	return &CloneResult{Dir: destDir, CommitHash: commitHash}, nil
}

func resolveHead(ctx context.Context, repoDir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoDir, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
