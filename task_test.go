package sitebuild

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTaskID(t *testing.T) {
	for _, id := range TaskIDs {
		parsed, err := ParseTaskID(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	}

	for _, name := range []string{"", "Build", "watch", "BAD_TASK"} {
		_, err := ParseTaskID(name)
		require.ErrorIs(t, err, ErrTaskNotFound, "name %q", name)
	}
}

func TestRegistry(t *testing.T) {
	cfg := DefaultConfig()
	registry := NewRegistry(cfg)

	build, err := registry.Lookup("build")
	require.NoError(t, err)
	require.Equal(t, []StepKind{
		KindClean,
		KindClean,
		KindShell,
		KindCopy,
		KindCssMinify,
		KindHtmlMinify,
	}, kinds(build.Steps))
	require.Equal(t, Shell{CommandLine: "bundle exec jekyll build"}, build.Steps[2])
	require.Equal(t, CssMinify{Files: []FilePair{
		{Src: "dist/public/css/poole.css", Dst: "dist/public/css/poole.css"},
		{Src: "dist/public/css/lanyon.css", Dst: "dist/public/css/lanyon.css"},
	}}, build.Steps[4])

	deploy, err := registry.Lookup("deploy")
	require.NoError(t, err)
	require.Equal(t, []Step{Deploy{
		Dir:    "dist",
		Remote: "https://github.com/pavdmyt/pavdmyt.github.io.git",
		Branch: "master",
		Commit: true,
		Push:   true,
	}}, deploy.Steps)

	watch, err := registry.Lookup("dist-watch")
	require.NoError(t, err)
	require.Equal(t, []Step{Serve{Root: "dist", Port: 4000}}, watch.Steps)

	def, err := registry.Lookup("default")
	require.NoError(t, err)
	require.Equal(t, append(build.Steps, watch.Steps...), def.Steps)
	require.Equal(t, KindServe, def.Steps[len(def.Steps)-1].Kind())

	// Outward-facing steps never run implicitly
	for _, task := range []Task{build, watch, def} {
		for _, step := range task.Steps {
			require.NotEqual(t, KindDeploy, step.Kind(), "task %s", task.ID)
			require.NotEqual(t, KindNotify, step.Kind(), "task %s", task.ID)
		}
	}

	_, err = registry.Lookup("publish")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRegistryImmutable(t *testing.T) {
	cfg := DefaultConfig()
	registry := NewRegistry(cfg)

	cfg.Stylesheets[0] = "changed.css"
	build, err := registry.Task(TaskBuild)
	require.NoError(t, err)
	build.Steps[0] = Clean{Dir: "/"}
	build.Steps[4].(CssMinify).Files[0] = FilePair{Src: "/etc/passwd", Dst: "/etc/passwd"}

	again, err := registry.Task(TaskBuild)
	require.NoError(t, err)
	require.Equal(t, Clean{Dir: "_site", KeepHidden: true}, again.Steps[0])
	require.Equal(t, FilePair{Src: "dist/public/css/poole.css", Dst: "dist/public/css/poole.css"}, again.Steps[4].(CssMinify).Files[0])
}

func TestRegistryNotifyServicesImmutable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NotifyServices = SelectServices(true, true)
	registry := NewRegistry(cfg)

	notify, err := registry.Task(TaskNotify)
	require.NoError(t, err)
	notify.Steps[0].(Notify).Services[0].Endpoint = "http://example.invalid"

	again, err := registry.Task(TaskNotify)
	require.NoError(t, err)
	require.Equal(t, []NotifyService{ServiceGoogle, ServiceBing}, again.Steps[0].(Notify).Services)
}

func TestStepStrings(t *testing.T) {
	require.Equal(t, "clean _site", Clean{Dir: "_site"}.String())
	require.Equal(t, "shell 'bundle exec jekyll build'", Shell{CommandLine: BuildCommandDefault}.String())
	require.Equal(t, "copy _site->dist", Copy{SrcRoot: "_site", DstRoot: "dist"}.String())
	require.Equal(t, "serve dist :4000", Serve{Root: "dist", Port: 4000}.String())
	require.Equal(t, "BAD_STEP", StepKind(0).String())
	require.Equal(t, "BAD_TASK", TaskID(0).String())
}

func kinds(steps []Step) []StepKind {
	out := make([]StepKind, len(steps))
	for i := range steps {
		out[i] = steps[i].Kind()
	}

	return out
}
