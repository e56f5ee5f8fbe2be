package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"gridwatch/internal/config"
)

// ShellHook executes shell commands as hooks.
// It injects the refresh event into the environment and bounds each run
// with the hook's configured timeout.
type ShellHook struct {
	BaseHook
}

// NewShellHook creates a new shell hook with the given parameters.
func NewShellHook(name string, phase HookPhase, def config.HookDefinition) *ShellHook {
	return &ShellHook{
		BaseHook: NewBaseHook(name, phase, def),
	}
}

// Execute runs the shell command with the hook context.
// It sets environment variables describing the refresh event and
// captures stdout/stderr. The result includes the exit code and output.
func (h *ShellHook) Execute(ctx context.Context, hookCtx *HookContext) (*HookResult, error) {
	if hookCtx == nil {
		return nil, fmt.Errorf("hook context is required")
	}

	command := h.definition.Command
	if command == "" {
		return nil, fmt.Errorf("shell hook command is empty")
	}

	// Expand event variables in the command
	command = h.expandEventVars(command, hookCtx)

	runCtx, cancel := context.WithTimeout(ctx, h.GetTimeout())
	defer cancel()

	// Create the command
	cmd := exec.CommandContext(runCtx, "sh", "-c", command)

	// Set up environment variables
	cmd.Env = h.buildEnv(hookCtx)

	// Capture output
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Run the command
	err := cmd.Run()

	// Combine stdout and stderr for output
	output := strings.TrimSpace(stdout.String())
	if stderr.Len() > 0 {
		stderrStr := strings.TrimSpace(stderr.String())
		if output != "" {
			output = output + "\n" + stderrStr
		} else {
			output = stderrStr
		}
	}

	// Determine success and exit code
	exitCode := 0
	var errMsg string
	success := true

	if err != nil {
		success = false
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
		errMsg = err.Error()
		if runCtx.Err() == context.DeadlineExceeded {
			errMsg = fmt.Sprintf("timed out after %v", h.GetTimeout())
		}
	}

	return h.CreateHookResult(success, output, errMsg, exitCode), nil
}

// buildEnv creates the environment variables for the shell command.
// It starts with the current process environment and adds event-specific
// variables.
func (h *ShellHook) buildEnv(hookCtx *HookContext) []string {
	// Start with current environment
	env := os.Environ()

	// Append event variables
	for key, value := range h.eventVars(hookCtx) {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}

// eventVars maps the hook context onto GRIDWATCH_* variables.
func (h *ShellHook) eventVars(hookCtx *HookContext) map[string]string {
	vars := map[string]string{
		"GRIDWATCH_EVENT":     hookCtx.Event,
		"GRIDWATCH_FRAME":     hookCtx.Frame,
		"GRIDWATCH_PATH":      hookCtx.Path,
		"GRIDWATCH_ROWS":      strconv.Itoa(hookCtx.Rows),
		"GRIDWATCH_WORKSPACE": hookCtx.WorkspaceDir,
	}

	if hookCtx.SnapshotID != 0 {
		vars["GRIDWATCH_SNAPSHOT_ID"] = strconv.FormatInt(hookCtx.SnapshotID, 10)
	}

	return vars
}

// expandEventVars expands ${VAR} patterns in the command string using the
// hook context. This allows commands like
// "echo 'reloaded: ${GRIDWATCH_FRAME}'" to work even outside the shell's
// own expansion.
func (h *ShellHook) expandEventVars(command string, hookCtx *HookContext) string {
	result := command
	for key, value := range h.eventVars(hookCtx) {
		result = strings.ReplaceAll(result, "${"+key+"}", value)
	}
	return result
}
