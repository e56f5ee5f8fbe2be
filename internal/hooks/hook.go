// Package hooks runs user-configured shell commands on refresh events.
// Hooks fire after reload passes and after snapshots are recorded.
package hooks

import (
	"context"
	"fmt"
	"time"

	"gridwatch/internal/config"
)

// HookPhase indicates which refresh event a hook runs on.
type HookPhase string

const (
	// HookPhaseReload indicates the hook runs after a reload pass.
	HookPhaseReload HookPhase = "post_reload"
	// HookPhaseSnapshot indicates the hook runs after a snapshot is recorded.
	HookPhaseSnapshot HookPhase = "post_snapshot"
)

// String returns the string representation of the hook phase.
func (p HookPhase) String() string {
	return string(p)
}

// IsValid returns true if the hook phase is valid.
func (p HookPhase) IsValid() bool {
	return p == HookPhaseReload || p == HookPhaseSnapshot
}

// HookContext provides context information for hook execution.
// It describes the refresh event the hook is reacting to.
type HookContext struct {
	// Event names what triggered the hook ("reload" or "snapshot").
	Event string
	// Frame is the frame the event concerns. Empty for a full reload pass.
	Frame string
	// Path is the source file behind a single-file reload.
	Path string
	// Rows is the row count involved (rows loaded, or rows snapshotted).
	Rows int
	// SnapshotID is the recorded snapshot id (snapshot hooks only).
	SnapshotID int64
	// WorkspaceDir is the workspace root directory.
	WorkspaceDir string
}

// HookResult represents the outcome of a hook execution.
type HookResult struct {
	// Success indicates whether the hook completed successfully.
	Success bool
	// Output is the captured output from the hook.
	Output string
	// Error contains any error message if the hook failed.
	Error string
	// ExitCode is the command exit code (0 = success).
	ExitCode int
	// FailureMode is the configured failure handling mode.
	FailureMode config.FailureMode
}

// IsSuccess returns true if the hook executed successfully.
func (r HookResult) IsSuccess() bool {
	return r.Success && r.ExitCode == 0
}

// ShouldAbort returns true if the hook failure should stop the scheduler.
func (r HookResult) ShouldAbort() bool {
	return !r.IsSuccess() && r.FailureMode == config.FailureModeAbort
}

// ShouldWarnAndContinue returns true if the hook failure should log a
// warning and continue.
func (r HookResult) ShouldWarnAndContinue() bool {
	return !r.IsSuccess() && r.FailureMode == config.FailureModeWarnContinue
}

// Hook defines the interface that hook implementations must satisfy.
type Hook interface {
	// Name returns a descriptive name for this hook (for logging/debugging).
	Name() string

	// Phase returns which refresh event this hook runs on.
	Phase() HookPhase

	// Definition returns the underlying hook definition from config.
	Definition() config.HookDefinition

	// Execute runs the hook with the given context.
	// Returns a HookResult with the outcome of the execution.
	Execute(ctx context.Context, hookCtx *HookContext) (*HookResult, error)
}

// BaseHook provides common functionality for hook implementations.
type BaseHook struct {
	// name is a descriptive name for this hook instance.
	name string
	// phase indicates which refresh event this hook runs on.
	phase HookPhase
	// definition is the hook configuration from config.yaml.
	definition config.HookDefinition
}

// NewBaseHook creates a new BaseHook with the given parameters.
func NewBaseHook(name string, phase HookPhase, def config.HookDefinition) BaseHook {
	return BaseHook{
		name:       name,
		phase:      phase,
		definition: def,
	}
}

// Name returns the hook name.
func (h *BaseHook) Name() string {
	return h.name
}

// Phase returns the hook phase.
func (h *BaseHook) Phase() HookPhase {
	return h.phase
}

// Definition returns the hook definition.
func (h *BaseHook) Definition() config.HookDefinition {
	return h.definition
}

// GetFailureMode returns the failure mode, defaulting to WarnContinue if not set.
func (h *BaseHook) GetFailureMode() config.FailureMode {
	if h.definition.OnFailure == "" {
		return config.FailureModeWarnContinue
	}
	return h.definition.OnFailure
}

// GetTimeout returns the command timeout, defaulting to DefaultHookTimeout.
func (h *BaseHook) GetTimeout() time.Duration {
	if h.definition.Timeout <= 0 {
		return config.DefaultHookTimeout
	}
	return h.definition.Timeout
}

// CreateHookResult creates a HookResult with the hook's failure mode.
func (h *BaseHook) CreateHookResult(success bool, output, errMsg string, exitCode int) *HookResult {
	return &HookResult{
		Success:     success,
		Output:      output,
		Error:       errMsg,
		ExitCode:    exitCode,
		FailureMode: h.GetFailureMode(),
	}
}

// CreateHooksFromConfig creates Hook instances from the configuration.
// It returns the reload hooks and the snapshot hooks in config order.
func CreateHooksFromConfig(cfg *config.HooksConfig) (reloadHooks, snapshotHooks []Hook) {
	if cfg == nil {
		return nil, nil
	}

	reloadHooks = make([]Hook, 0, len(cfg.PostReload))
	snapshotHooks = make([]Hook, 0, len(cfg.PostSnapshot))

	for i, def := range cfg.PostReload {
		name := fmt.Sprintf("post_reload[%d]", i)
		reloadHooks = append(reloadHooks, NewShellHook(name, HookPhaseReload, def))
	}

	for i, def := range cfg.PostSnapshot {
		name := fmt.Sprintf("post_snapshot[%d]", i)
		snapshotHooks = append(snapshotHooks, NewShellHook(name, HookPhaseSnapshot, def))
	}

	return reloadHooks, snapshotHooks
}
