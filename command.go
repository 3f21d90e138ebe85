package sitebuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/mattn/go-shellwords"
)

// Command is one external program invocation.
// Quiet commands are captured but not echoed to the operator.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Quiet bool
}

type CommandResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Commander is the only way sitebuild reaches external programs.
//
// A command that ran but exited non-zero yields its result
// together with an [*ExitError].
type Commander interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// ExecCommander runs commands with os/exec, streaming their output
// to Stdout and Stderr while capturing it.
type ExecCommander struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (c ExecCommander) Run(ctx context.Context, cmd Command) (CommandResult, error) {
	var stdout, stderr bytes.Buffer

	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Stdout = tee(&stdout, c.Stdout, cmd.Quiet)
	proc.Stderr = tee(&stderr, c.Stderr, cmd.Quiet)

	slog.Debug("exec", "name", cmd.Name, "args", cmd.Args, "dir", cmd.Dir)

	err := proc.Run()
	result := CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{
			Name:   cmd.Name,
			Code:   result.ExitCode,
			Stderr: result.Stderr,
		}
	}

	return result, fmt.Errorf("failed to run '%s': %w", cmd.Name, err)
}

func (e *Executor) shell(ctx context.Context, s Shell) error {
	argv, err := splitCommand(s.CommandLine)
	if err != nil {
		return err
	}

	_, err = e.Commander.Run(ctx, Command{
		Name: argv[0],
		Args: argv[1:],
		Dir:  s.Dir,
	})

	return err
}

func splitCommand(line string) ([]string, error) {
	argv, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("bad command line '%s': %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("found empty command line")
	}

	return argv, nil
}

func tee(buf *bytes.Buffer, w io.Writer, quiet bool) io.Writer {
	if w == nil || quiet {
		return buf
	}

	return io.MultiWriter(buf, w)
}
