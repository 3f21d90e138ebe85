package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/pavdmyt/sitebuild"
)

const (
	exitOk     = 0
	exitFail   = 1
	exitConfig = 2
)

type cli struct {
	Tasks   []string `arg:"positional" help:"Tasks to run in order (default: default)"`
	Dir     string   `arg:"-C,--dir" help:"Run from this project directory"`
	Debug   bool     `arg:"--debug" help:"Verbose logging"`
	Google  bool     `arg:"--google" help:"notify: ping Google with the sitemap"`
	Bing    bool     `arg:"--bing" help:"notify: ping Bing with the sitemap"`
	Preview string   `arg:"--preview-command" help:"dist-watch: run this file server instead of the built-in one"`
}

func (cli) Description() string {
	names := make([]string, len(sitebuild.TaskIDs))
	for i, id := range sitebuild.TaskIDs {
		names[i] = id.String()
	}

	return "Builds, previews and deploys the blog.\nTasks: " + strings.Join(names, ", ")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := cli{}
	p, err := arg.NewParser(arg.Config{Program: "sitebuild"}, &c)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	err = p.Parse(args)
	switch {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(stdout)
		return exitOk

	case err != nil:
		p.WriteUsage(stderr)
		fmt.Fprintln(stderr, "error:", err)
		return exitConfig
	}

	slog.SetDefault(sitebuild.NewLogger(stderr, c.Debug))

	if c.Dir != "" {
		if err := os.Chdir(c.Dir); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return exitConfig
		}
	}
	if len(c.Tasks) == 0 {
		c.Tasks = []string{sitebuild.TaskDefault.String()}
	}

	cfg := sitebuild.DefaultConfig()
	cfg.NotifyServices = sitebuild.SelectServices(c.Google, c.Bing)
	cfg.PreviewCommand = c.Preview

	runner := sitebuild.NewRunner(cfg, stdout, stderr)
	err = runner.Run(ctx, c.Tasks...)
	if err == nil {
		return exitOk
	}

	fmt.Fprintln(stderr, "error:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var exitErr *sitebuild.ExitError
	switch {
	case errors.Is(err, sitebuild.ErrTaskNotFound):
		return exitConfig

	case errors.As(err, &exitErr) && exitErr.Code > 0:
		return exitErr.Code
	}

	return exitFail
}
