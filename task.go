package sitebuild

import (
	"fmt"
	"path/filepath"
	"slices"
)

type TaskID int

const (
	TaskBuild TaskID = iota + 1
	TaskDeploy
	TaskDistWatch
	TaskDefault
	TaskNotify
)

// TaskIDs lists every task in help-text order.
var TaskIDs = []TaskID{
	TaskDefault,
	TaskBuild,
	TaskDistWatch,
	TaskDeploy,
	TaskNotify,
}

type Task struct {
	ID    TaskID
	Steps []Step
}

type Registry struct {
	tasks map[TaskID]Task
}

func (t TaskID) String() string {
	switch t {
	case TaskBuild:
		return "build"
	case TaskDeploy:
		return "deploy"
	case TaskDistWatch:
		return "dist-watch"
	case TaskDefault:
		return "default"
	case TaskNotify:
		return "notify"
	}

	return "BAD_TASK"
}

// ParseTaskID maps a CLI task name to its TaskID.
func ParseTaskID(name string) (TaskID, error) {
	for _, id := range TaskIDs {
		if id.String() == name {
			return id, nil
		}
	}

	return 0, fmt.Errorf("'%s': %w", name, ErrTaskNotFound)
}

// NewRegistry declares all tasks from cfg.
// Deploy and notify have outside-visible effects and
// are never reachable from default or build.
func NewRegistry(cfg Config) Registry {
	build := []Step{
		Clean{Dir: cfg.SiteDir, KeepHidden: true},
		Clean{Dir: cfg.DistDir, KeepHidden: true},
		Shell{CommandLine: cfg.BuildCommand},
		Copy{SrcRoot: cfg.SiteDir, DstRoot: cfg.DistDir},
		CssMinify{Files: inPlace(cfg.Stylesheets)},
		HtmlMinify{
			SrcRoot:            cfg.DistDir,
			DstRoot:            cfg.DistDir,
			RemoveComments:     true,
			CollapseWhitespace: true,
		},
	}

	distWatch := []Step{
		Serve{Root: cfg.DistDir, Port: cfg.PreviewPort, CommandLine: cfg.PreviewCommand},
	}

	deploy := []Step{
		Deploy{
			Dir:    cfg.DistDir,
			Remote: cfg.DeployRemote,
			Branch: cfg.DeployBranch,
			Commit: true,
			Push:   true,
		},
	}

	notify := []Step{
		Notify{
			SitemapUrl: cfg.SitemapUrl,
			Services:   slices.Clone(cfg.NotifyServices),
		},
	}

	return Registry{
		tasks: map[TaskID]Task{
			TaskBuild:     {ID: TaskBuild, Steps: build},
			TaskDistWatch: {ID: TaskDistWatch, Steps: distWatch},
			TaskDefault:   {ID: TaskDefault, Steps: concat(build, distWatch)},
			TaskDeploy:    {ID: TaskDeploy, Steps: deploy},
			TaskNotify:    {ID: TaskNotify, Steps: notify},
		},
	}
}

// Lookup returns a copy of the task registered under name.
func (r Registry) Lookup(name string) (Task, error) {
	id, err := ParseTaskID(name)
	if err != nil {
		return Task{}, err
	}

	return r.Task(id)
}

func (r Registry) Task(id TaskID) (Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("'%s': %w", id, ErrTaskNotFound)
	}

	steps := make([]Step, len(task.Steps))
	for i := range task.Steps {
		steps[i] = cloneStep(task.Steps[i])
	}

	return Task{ID: task.ID, Steps: steps}, nil
}

// cloneStep copies the slices a step holds, so callers
// cannot reach the registry through a returned task.
func cloneStep(step Step) Step {
	switch s := step.(type) {
	case CssMinify:
		s.Files = slices.Clone(s.Files)
		return s
	case Notify:
		s.Services = slices.Clone(s.Services)
		return s
	}

	return step
}

func inPlace(paths []string) []FilePair {
	pairs := make([]FilePair, len(paths))
	for i := range paths {
		p := filepath.Clean(paths[i])
		pairs[i] = FilePair{Src: p, Dst: p}
	}

	return pairs
}

func concat(seqs ...[]Step) []Step {
	var out []Step
	for i := range seqs {
		out = append(out, seqs[i]...)
	}

	return out
}
