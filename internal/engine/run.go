package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Run builds the merged overlay, then executes the requested command with
// the overlay environment appended to the inherited one. The overlay lives
// exactly as long as the child: it is released when the child exits, and a
// SIGINT or SIGTERM delivered any time from allocation onward — mid-merge
// or while the child runs — releases it and exits the process with
// status 0.
func (e *Engine) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if len(req.Command) == 0 {
		return nil, ErrNoCommand
	}

	setup, err := e.Setup(ctx, &req.Setup)
	if err != nil {
		return nil, err
	}
	guard := setup.Guard
	defer setup.StopWatch()
	defer func() {
		if err := guard.Release(); err != nil {
			e.log.Error().Err(err).Msg("overlay cleanup failed")
		}
	}()

	if err := guard.Activate(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, req.Command[0], req.Command[1:]...)
	cmd.Env = append(os.Environ(), setup.Env.Pairs()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	e.log.Debug().Strs("command", req.Command).Str("overlay", guard.Dir()).Msg("starting child process")

	result := &RunResult{
		Env:        setup.Env,
		OverlayDir: guard.Dir(),
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("failed to run %s: %w", req.Command[0], err)
	}

	return result, nil
}
