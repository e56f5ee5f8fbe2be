package hooks

import (
	"context"
	"fmt"

	"gridwatch/internal/config"
)

// ManagerResult represents the aggregate outcome of executing a phase of hooks.
type ManagerResult struct {
	// AllSuccess is true if all hooks succeeded.
	AllSuccess bool
	// Results contains the individual result for each hook.
	Results []*HookResult
	// Action is the recommended action based on hook results.
	Action ManagerAction
	// FailedHook is the hook that caused a non-continue action (if any).
	FailedHook Hook
	// FailedResult is the result of the failed hook (if any).
	FailedResult *HookResult
}

// ManagerAction defines the action the manager recommends after hook execution.
type ManagerAction string

const (
	// ManagerActionContinue indicates all hooks passed or failed with warn_continue.
	ManagerActionContinue ManagerAction = "continue"
	// ManagerActionAbort indicates a hook failed with abort mode.
	ManagerActionAbort ManagerAction = "abort"
)

// Manager orchestrates hook execution for the refresh scheduler.
// It manages reload and snapshot hooks, executing them in order and
// handling failures according to each hook's configured failure mode.
type Manager struct {
	reloadHooks   []Hook
	snapshotHooks []Hook
	// Logger is called for each hook execution (optional).
	Logger func(phase HookPhase, hook Hook, result *HookResult)
}

// NewManager creates a new hook manager with the given hooks.
func NewManager(reloadHooks, snapshotHooks []Hook) *Manager {
	return &Manager{
		reloadHooks:   reloadHooks,
		snapshotHooks: snapshotHooks,
	}
}

// NewManagerFromConfig creates a Manager from configuration.
// This is a convenience constructor that creates hooks from config.
func NewManagerFromConfig(cfg *config.HooksConfig) *Manager {
	reloadHooks, snapshotHooks := CreateHooksFromConfig(cfg)
	return NewManager(reloadHooks, snapshotHooks)
}

// ReloadHooks returns the reload hooks.
func (m *Manager) ReloadHooks() []Hook {
	return m.reloadHooks
}

// SnapshotHooks returns the snapshot hooks.
func (m *Manager) SnapshotHooks() []Hook {
	return m.snapshotHooks
}

// HasReloadHooks returns true if there are reload hooks configured.
func (m *Manager) HasReloadHooks() bool {
	return len(m.reloadHooks) > 0
}

// HasSnapshotHooks returns true if there are snapshot hooks configured.
func (m *Manager) HasSnapshotHooks() bool {
	return len(m.snapshotHooks) > 0
}

// ExecuteReloadHooks runs all reload hooks in order.
// It stops execution if a hook fails with abort mode.
// Returns a ManagerResult with the aggregate outcome.
func (m *Manager) ExecuteReloadHooks(ctx context.Context, hookCtx *HookContext) *ManagerResult {
	return m.executeHooks(ctx, m.reloadHooks, hookCtx, HookPhaseReload)
}

// ExecuteSnapshotHooks runs all snapshot hooks in order.
// It stops execution if a hook fails with abort mode.
// Returns a ManagerResult with the aggregate outcome.
func (m *Manager) ExecuteSnapshotHooks(ctx context.Context, hookCtx *HookContext) *ManagerResult {
	return m.executeHooks(ctx, m.snapshotHooks, hookCtx, HookPhaseSnapshot)
}

// BuildHookContextForReload creates a HookContext for reload hooks.
// Frame and path are empty for a full reload pass.
func BuildHookContextForReload(frame, path string, rows int, workspaceDir string) *HookContext {
	return &HookContext{
		Event:        "reload",
		Frame:        frame,
		Path:         path,
		Rows:         rows,
		WorkspaceDir: workspaceDir,
	}
}

// BuildHookContextForSnapshot creates a HookContext for snapshot hooks.
func BuildHookContextForSnapshot(frame string, rows int, snapshotID int64, workspaceDir string) *HookContext {
	return &HookContext{
		Event:        "snapshot",
		Frame:        frame,
		Rows:         rows,
		SnapshotID:   snapshotID,
		WorkspaceDir: workspaceDir,
	}
}

// executeHooks runs a list of hooks in order, handling failures.
func (m *Manager) executeHooks(ctx context.Context, hooks []Hook, hookCtx *HookContext, phase HookPhase) *ManagerResult {
	result := &ManagerResult{
		AllSuccess: true,
		Results:    make([]*HookResult, 0, len(hooks)),
		Action:     ManagerActionContinue,
	}

	for _, hook := range hooks {
		// Check context cancellation
		if ctx.Err() != nil {
			result.AllSuccess = false
			result.Action = ManagerActionAbort
			break
		}

		hookResult, err := hook.Execute(ctx, hookCtx)
		if err != nil {
			// Execution error (not hook failure) - treat as abort
			hookResult = &HookResult{
				Success:     false,
				Error:       fmt.Sprintf("execution error: %v", err),
				ExitCode:    1,
				FailureMode: config.FailureModeAbort,
			}
		}

		result.Results = append(result.Results, hookResult)

		// Log the result if logger is configured
		if m.Logger != nil {
			m.Logger(phase, hook, hookResult)
		}

		// Handle failure modes
		if !hookResult.IsSuccess() {
			result.AllSuccess = false

			if hookResult.ShouldAbort() {
				result.Action = ManagerActionAbort
				result.FailedHook = hook
				result.FailedResult = hookResult
				return result
			}

			// warn_continue: move on to the next hook
		}
	}

	return result
}

// FailedHookInfo returns a formatted string describing the failed hook
// for logs and refresh events.
func (m *Manager) FailedHookInfo(result *ManagerResult) string {
	if result.FailedHook == nil || result.FailedResult == nil {
		return ""
	}

	return fmt.Sprintf(
		"hook %q (phase: %s) failed with exit code %d: %s",
		result.FailedHook.Name(),
		result.FailedHook.Phase(),
		result.FailedResult.ExitCode,
		result.FailedResult.Error,
	)
}
