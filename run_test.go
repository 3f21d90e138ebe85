package sitebuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder records every step it is asked to run
// and fails on the step at failAt (1-based, 0 never fails).
type recorder struct {
	steps  []Step
	failAt int
	err    error
}

func (r *recorder) Exec(_ context.Context, step Step) error {
	r.steps = append(r.steps, step)
	if r.failAt != 0 && len(r.steps) == r.failAt {
		return r.err
	}

	return nil
}

func testConfig(root string) Config {
	cfg := DefaultConfig()
	cfg.SiteDir = filepath.Join(root, "_site")
	cfg.DistDir = filepath.Join(root, "dist")
	cfg.Stylesheets = []string{filepath.Join(root, "dist", "public", "css", "poole.css")}
	cfg.BuildCommand = "true"

	return cfg
}

func TestRunOrder(t *testing.T) {
	registry := NewRegistry(DefaultConfig())

	for _, id := range TaskIDs {
		t.Run(id.String(), func(t *testing.T) {
			rec := &recorder{}
			runner := Runner{Registry: registry, Executor: rec}

			err := runner.Run(context.Background(), id.String())
			require.NoError(t, err)

			task, err := registry.Task(id)
			require.NoError(t, err)
			require.Equal(t, task.Steps, rec.steps)
		})
	}
}

func TestRunMultipleTasks(t *testing.T) {
	registry := NewRegistry(DefaultConfig())
	rec := &recorder{}
	runner := Runner{Registry: registry, Executor: rec}

	err := runner.Run(context.Background(), "build", "deploy")
	require.NoError(t, err)

	build, _ := registry.Task(TaskBuild)
	deploy, _ := registry.Task(TaskDeploy)
	require.Equal(t, append(build.Steps, deploy.Steps...), rec.steps)
}

func TestRunAbortsOnFailure(t *testing.T) {
	registry := NewRegistry(DefaultConfig())
	build, err := registry.Task(TaskBuild)
	require.NoError(t, err)

	errBoom := errors.New("boom")
	for k := 1; k <= len(build.Steps); k++ {
		rec := &recorder{failAt: k, err: errBoom}
		runner := Runner{Registry: registry, Executor: rec}

		err := runner.Run(context.Background(), "build", "deploy")
		require.ErrorIs(t, err, errBoom)
		require.Len(t, rec.steps, k, "steps after failing step %d must not run", k)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, TaskBuild, stepErr.Task)
		require.Equal(t, k-1, stepErr.Index)
		require.Equal(t, build.Steps[k-1], stepErr.Step)
	}
}

func TestRunAbortLeavesLaterSideEffectsAbsent(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.BuildCommand = "false"

	site := filepath.Join(cfg.SiteDir, "index.html")
	require.NoError(t, os.MkdirAll(cfg.SiteDir, os.ModePerm))
	require.NoError(t, os.WriteFile(site, []byte("<p>hi</p>"), 0o644))

	runner := NewRunner(cfg, nil, nil)
	err := runner.Run(context.Background(), "build")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)

	// Clean ran, copy never did
	_, err = os.Stat(site)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.DistDir)
	require.True(t, os.IsNotExist(err))
}

func TestRunUnknownTask(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	keep := filepath.Join(cfg.SiteDir, "keep.html")
	require.NoError(t, os.MkdirAll(cfg.SiteDir, os.ModePerm))
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

	rec := &recorder{}
	runner := Runner{Registry: NewRegistry(cfg), Executor: rec}

	// build would clean _site, but the unknown name stops everything up front
	err := runner.Run(context.Background(), "build", "publish")
	require.ErrorIs(t, err, ErrTaskNotFound)
	require.Empty(t, rec.steps)

	err = NewRunner(cfg, nil, nil).Run(context.Background(), "build", "publish")
	require.ErrorIs(t, err, ErrTaskNotFound)

	data, err := os.ReadFile(keep)
	require.NoError(t, err)
	require.Equal(t, "keep", string(data))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	runner := Runner{Registry: NewRegistry(DefaultConfig()), Executor: rec}

	err := runner.Run(ctx, "build")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, rec.steps)
}

func TestRunBuild(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	files := map[string]string{
		"index.html":           "<!-- note -->\n<p>  Hello  </p>\n<pre>  keep  </pre>\n",
		"blog/post/index.html": "<div>\n   <span>post</span>\n</div>\n",
		"public/css/poole.css": "body {  color: red;  }\n/* comment */",
		"public/css/other.css": "body {  color: blue;  }\n",
		"feed.xml":             "<feed>  </feed>",
	}
	for name, data := range files {
		path := filepath.Join(cfg.SiteDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}

	stale := filepath.Join(cfg.DistDir, "stale.html")
	require.NoError(t, os.MkdirAll(cfg.DistDir, os.ModePerm))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	// The real generator would rebuild _site, so keep a copy to restore
	// after the cleaners ran.
	rec := &restoringExecutor{
		Executor: NewExecutor(nil, nil),
		site:     cfg.SiteDir,
		files:    files,
	}
	runner := Runner{Registry: NewRegistry(cfg), Executor: rec}

	err := runner.Run(context.Background(), "build")
	require.NoError(t, err)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err), "stale dist file survived")

	css, err := os.ReadFile(filepath.Join(cfg.DistDir, "public", "css", "poole.css"))
	require.NoError(t, err)
	require.Equal(t, "body{color:red}", string(css))

	// Not in the stylesheet list
	other, err := os.ReadFile(filepath.Join(cfg.DistDir, "public", "css", "other.css"))
	require.NoError(t, err)
	require.Equal(t, files["public/css/other.css"], string(other))

	index, err := os.ReadFile(filepath.Join(cfg.DistDir, "index.html"))
	require.NoError(t, err)
	require.NotContains(t, string(index), "<!--")
	require.Contains(t, string(index), "<pre>  keep  </pre>")

	feed, err := os.ReadFile(filepath.Join(cfg.DistDir, "feed.xml"))
	require.NoError(t, err)
	require.Equal(t, files["feed.xml"], string(feed))
}

// restoringExecutor plays the site generator: on the shell step
// it writes files into site instead of running a command.
type restoringExecutor struct {
	*Executor
	site  string
	files map[string]string
}

func (e *restoringExecutor) Exec(ctx context.Context, step Step) error {
	if step.Kind() != KindShell {
		return e.Executor.Exec(ctx, step)
	}

	for name, data := range e.files {
		path := filepath.Join(e.site, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return err
		}
	}

	return nil
}
