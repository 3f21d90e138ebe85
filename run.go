package sitebuild

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-resty/resty/v2"
)

// StepExecutor performs a single step.
type StepExecutor interface {
	Exec(ctx context.Context, step Step) error
}

// Runner runs named tasks from a [Registry], one step at a time.
type Runner struct {
	Registry Registry
	Executor StepExecutor
}

// Executor is the production [StepExecutor].
type Executor struct {
	Commander Commander
	Client    *resty.Client
	Stdout    io.Writer
}

var loglevel = new(slog.LevelVar)

func NewRunner(cfg Config, stdout, stderr io.Writer) Runner {
	return Runner{
		Registry: NewRegistry(cfg),
		Executor: NewExecutor(stdout, stderr),
	}
}

func NewExecutor(stdout, stderr io.Writer) *Executor {
	return &Executor{
		Commander: ExecCommander{Stdout: stdout, Stderr: stderr},
		Client:    resty.New(),
		Stdout:    stdout,
	}
}

// Run resolves every name before running anything,
// so an unknown task leaves the filesystem untouched.
// Tasks then run in the given order, and the first failing step
// aborts the run without undoing earlier steps.
func (r Runner) Run(ctx context.Context, names ...string) error {
	tasks := make([]Task, len(names))
	for i := range names {
		task, err := r.Registry.Lookup(names[i])
		if err != nil {
			slog.Error("unknown task", "task", names[i])
			return err
		}

		tasks[i] = task
	}

	for i := range tasks {
		err := r.runTask(ctx, tasks[i])
		if err != nil {
			return err
		}
	}

	return nil
}

func (r Runner) runTask(ctx context.Context, task Task) error {
	logger := slog.Default().WithGroup("task").With("name", task.ID.String())
	logger.Info("running task", "steps", len(task.Steps))

	for i, step := range task.Steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Task: task.ID, Index: i, Step: step, Err: err}
		}

		logger.Info("running step", "index", i+1, "step", step.String())
		err := r.Executor.Exec(ctx, step)
		if err != nil {
			logger.Error("step failed", "index", i+1, "step", step.String(), "error", err)
			return &StepError{
				Task:  task.ID,
				Index: i,
				Step:  step,
				Err:   err,
			}
		}
	}

	logger.Info("task done")
	return nil
}

func (e *Executor) Exec(ctx context.Context, step Step) error {
	switch s := step.(type) {
	case Clean:
		return clean(s)
	case Shell:
		return e.shell(ctx, s)
	case Copy:
		return copyTree(s)
	case CssMinify:
		return minifyCss(s)
	case HtmlMinify:
		return minifyHtml(s)
	case Deploy:
		return e.deploy(ctx, s)
	case Serve:
		if len(s.CommandLine) != 0 {
			return e.serveCommand(ctx, s)
		}

		return serve(ctx, s)
	case Notify:
		return e.notify(ctx, s)
	}

	return fmt.Errorf("%s: %w", step, ErrNotSupported)
}

// NewLogger returns the JSON logger used by the CLI.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	loglevel.Set(slog.LevelInfo)
	if debug {
		loglevel.Set(slog.LevelDebug)
	}
	if w == nil {
		w = os.Stderr
	}

	return slog.New(slog.NewJSONHandler(
		w,
		&slog.HandlerOptions{
			AddSource: debug,
			Level:     loglevel,
		}))
}
