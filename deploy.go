package sitebuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const git = "git"

// deploy publishes s.Dir following the grunt-build-control flow:
// the directory keeps its own history, separate from the project's.
// Pushes are never forced, so a rejected push fails the step.
func (e *Executor) deploy(ctx context.Context, s Deploy) error {
	if len(s.Dir) == 0 {
		return fmt.Errorf("found empty deploy dir")
	}
	if s.Push && (len(s.Remote) == 0 || len(s.Branch) == 0) {
		return fmt.Errorf("push requires remote and branch")
	}

	logger := slog.Default().WithGroup("deploy").With("dir", s.Dir, "remote", s.Remote, "branch", s.Branch)

	stat, err := os.Stat(s.Dir)
	if err != nil {
		return fmt.Errorf("failed to stat deploy dir '%s': %w", s.Dir, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("deploy dir is not a directory: '%s'", s.Dir)
	}

	repo := deployRepo{commander: e.Commander, dir: s.Dir}

	_, err = os.Stat(filepath.Join(s.Dir, ".git"))
	switch {
	case os.IsNotExist(err):
		logger.Info("initializing deploy repository")
		if err := repo.init(ctx); err != nil {
			return err
		}

	case err != nil:
		return fmt.Errorf("failed to stat deploy repository: %w", err)
	}

	if len(s.Remote) != 0 && len(s.Branch) != 0 {
		if err := repo.sync(ctx, s.Remote, s.Branch); err != nil {
			return err
		}
	}

	if s.Commit {
		msg := s.Message
		if msg == "" {
			msg = e.commitMessage(ctx, s.Dir)
		}

		committed, err := repo.commit(ctx, msg)
		if err != nil {
			return err
		}
		if !committed {
			logger.Info("no changes to commit")
		} else {
			logger.Info("committed", "message", msg)
		}
	}

	if !s.Push {
		return nil
	}

	logger.Info("pushing")
	_, err = repo.git(ctx, false, "push", s.Remote, "HEAD:refs/heads/"+s.Branch)
	if err != nil {
		return fmt.Errorf("push to '%s' rejected or failed: %w", s.Remote, err)
	}

	return nil
}

// commitMessage names the project commit the output was built from.
func (e *Executor) commitMessage(ctx context.Context, dir string) string {
	project := deployRepo{commander: e.Commander, dir: ""}
	sha, errSha := project.git(ctx, true, "rev-parse", "--short", "HEAD")
	branch, errBranch := project.git(ctx, true, "rev-parse", "--abbrev-ref", "HEAD")
	if errSha != nil || errBranch != nil {
		return fmt.Sprintf("Built %s", filepath.Base(dir))
	}

	return fmt.Sprintf("Built %s from commit %s on branch %s", filepath.Base(dir), sha, branch)
}

type deployRepo struct {
	commander Commander
	dir       string
}

func (r deployRepo) init(ctx context.Context) error {
	_, err := r.git(ctx, false, "init")
	if err != nil {
		return fmt.Errorf("failed to init deploy repository: %w", err)
	}

	return nil
}

// sync fetches the remote branch and soft-resets HEAD onto it
// unless HEAD already contains it. The work tree is kept; only
// local commits that never reached the remote are dropped.
func (r deployRepo) sync(ctx context.Context, remote, branch string) error {
	_, err := r.git(ctx, true, "fetch", remote, branch)
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		slog.Info("remote branch not fetched, publishing fresh history", "remote", remote, "branch", branch)
		return nil

	case err != nil:
		return fmt.Errorf("failed to fetch '%s': %w", remote, err)
	}

	// Exits non-zero when HEAD lacks FETCH_HEAD or does not exist yet
	_, err = r.git(ctx, true, "merge-base", "--is-ancestor", "FETCH_HEAD", "HEAD")
	switch {
	case err == nil:
		return nil

	case !errors.As(err, &exitErr):
		return fmt.Errorf("failed to compare with '%s/%s': %w", remote, branch, err)
	}

	_, err = r.git(ctx, false, "reset", "--soft", "FETCH_HEAD")
	if err != nil {
		return fmt.Errorf("failed to reset onto '%s/%s': %w", remote, branch, err)
	}

	return nil
}

// commit stages everything and commits it.
// It reports false when there was nothing to commit.
func (r deployRepo) commit(ctx context.Context, msg string) (bool, error) {
	_, err := r.git(ctx, false, "add", "--all", ".")
	if err != nil {
		return false, fmt.Errorf("failed to stage changes: %w", err)
	}

	status, err := r.git(ctx, true, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to read status: %w", err)
	}
	if len(status) == 0 {
		return false, nil
	}

	_, err = r.git(ctx, false, "commit", "-m", msg)
	if err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	return true, nil
}

func (r deployRepo) git(ctx context.Context, quiet bool, args ...string) (string, error) {
	result, err := r.commander.Run(ctx, Command{
		Name:  git,
		Args:  args,
		Dir:   r.dir,
		Quiet: quiet,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(result.Stdout)), nil
}
