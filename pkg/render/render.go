// Package render implements the Renderer Adapter (§4.6): uniform
// subprocess invocation of the containerized Mermaid/Structurizr/PlantUML
// renderers.
//
// Grounded on pkg/mcp/transport.go, which already wraps subprocess/stdio
// transports for MCP servers with the same command/stdin/stdout/stderr/
// timeout shape this adapter needs for renderer containers.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"golang.org/x/time/rate"
)

// RendererID identifies one containerized renderer.
type RendererID string

const (
	RendererMermaid     RendererID = "mermaid"
	RendererStructurizr RendererID = "structurizr"
	RendererPlantUML    RendererID = "plantuml"
)

// Config is one renderer's invocation template: the command and args to
// run, reading dialect text from stdin and writing SVG to stdout.
type Config struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Result is what the Orchestrator records in the execution entry (§4.6:
// "command string recorded in the execution record; stdout captured as
// SVG; stderr recorded").
type Result struct {
	Command  string
	SVG      string
	Stderr   string
	Duration time.Duration
}

// Adapter invokes containerized renderers, throttled by a per-host rate
// limiter so a burst of chat requests can't fork-bomb the render
// containers (domain-stack wiring: golang.org/x/time/rate).
type Adapter struct {
	configs map[RendererID]Config
	limiter *rate.Limiter
}

// NewAdapter builds an Adapter. maxConcurrent bounds the number of
// renderer subprocesses allowed to run per second per host; burst allows
// that many to start immediately before throttling kicks in.
func NewAdapter(configs map[RendererID]Config, maxConcurrent int, burst int) *Adapter {
	return &Adapter{
		configs: configs,
		limiter: rate.NewLimiter(rate.Limit(maxConcurrent), burst),
	}
}

// Render invokes the chosen renderer with dialectText on stdin. Returns
// apierr.RenderFailed on process timeout or non-zero exit (§4.6).
func (a *Adapter) Render(ctx context.Context, rendererID RendererID, dialectText string) (*Result, error) {
	cfg, ok := a.configs[rendererID]
	if !ok {
		return nil, apierr.New(apierr.RenderFailed, fmt.Sprintf("no renderer configured for %q", rendererID))
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, apierr.New(apierr.RenderFailed, fmt.Sprintf("renderer throttle wait aborted: %v", err))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, cfg.Command, cfg.Args...)
	cmd.Stdin = bytes.NewBufferString(dialectText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	commandString := fmt.Sprintf("%s %v", cfg.Command, cfg.Args)

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, apierr.New(apierr.RenderFailed, fmt.Sprintf("renderer %q timed out after %s", rendererID, timeout))
	}
	if err != nil {
		return nil, apierr.New(apierr.RenderFailed, fmt.Sprintf("renderer %q exited with error: %v, stderr: %s", rendererID, err, stderr.String()))
	}

	return &Result{
		Command:  commandString,
		SVG:      stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}, nil
}
