package animation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// ProcessLauncher runs each unit as a child process with a private address
// space. By default the child is the current executable invoked as
//
//	mandelmovie worker --unit U --start S --end E
//
// with the job in the MANDELMOVIE_JOB environment variable. Only the exit
// status flows back.
type ProcessLauncher struct {
	// Executable is the program to run. Empty means os.Executable().
	Executable string

	// Args precede the unit flags. Nil means {"worker"}.
	Args []string

	// Env is appended to the parent's environment.
	Env []string

	// Stdout and Stderr receive the unit's output. Nil means the parent's
	// stderr, keeping unit logs off stdout.
	Stdout io.Writer
	Stderr io.Writer
}

// Launch implements Launcher. Units always run to completion; ctx is not
// used to stop them.
func (l *ProcessLauncher) Launch(_ context.Context, job Job, a Assignment) (Handle, error) {
	exe := l.Executable
	if exe == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		exe = self
	}

	encoded, err := job.Encode()
	if err != nil {
		return nil, err
	}

	args := l.Args
	if args == nil {
		args = []string{"worker"}
	}
	args = append(append([]string{}, args...),
		"--unit", strconv.Itoa(a.Unit),
		"--start", strconv.Itoa(a.Frames.Start),
		"--end", strconv.Itoa(a.Frames.End),
	)

	cmd := exec.Command(exe, args...)
	cmd.Env = append(append(os.Environ(), l.Env...), JobEnv+"="+encoded)
	cmd.Stdout = l.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stderr
	}
	cmd.Stderr = l.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}
	return &processHandle{cmd: cmd}, nil
}

type processHandle struct {
	cmd *exec.Cmd
}

func (h *processHandle) Wait() error {
	err := h.cmd.Wait()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() < 0 {
			return fmt.Errorf("process %d terminated: %s", h.cmd.Process.Pid, exitErr.ProcessState)
		}
		return fmt.Errorf("process %d exited with code %d", h.cmd.Process.Pid, exitErr.ExitCode())
	}
	return err
}

func (h *processHandle) Kill() error {
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
