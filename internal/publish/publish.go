// Package publish commits regenerated slides and pushes them to the remote
// the kiosk pulls from.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	appLog "kioskcal/internal/log"
)

// ErrNotRepository is returned when RepoDir is not inside a git work tree.
var ErrNotRepository = errors.New("publish: not a git repository")

// Runner executes git with args in dir and returns combined stdout.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// Git publishes through the git command line.
type Git struct {
	RepoDir string
	Remote  string
	Branch  string

	// Run defaults to ExecGit.
	Run Runner
}

// DefaultMessage is the commit message used when none is given.
func DefaultMessage(now time.Time) string {
	return "Auto-update dashboard images - " + now.Format("2006-01-02 15:04:05")
}

// Publish stages paths, commits them with message and pushes. It reports
// whether a commit was made; no changes under paths is not an error.
//
// A rejected push is retried once after pull --rebase.
func (g *Git) Publish(ctx context.Context, message string, paths ...string) (bool, error) {
	run := g.Run
	if run == nil {
		run = ExecGit
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if message == "" {
		message = DefaultMessage(time.Now())
	}

	if _, err := run(ctx, g.RepoDir, "rev-parse", "--is-inside-work-tree"); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrNotRepository, g.RepoDir, err)
	}

	if _, err := run(ctx, g.RepoDir, append([]string{"add", "--"}, paths...)...); err != nil {
		return false, fmt.Errorf("publish: git add: %w", err)
	}

	status, err := run(ctx, g.RepoDir, append([]string{"status", "--porcelain", "--"}, paths...)...)
	if err != nil {
		return false, fmt.Errorf("publish: git status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		appLog.Info("publish: no changes to commit", "repo", g.RepoDir)
		return false, nil
	}

	if _, err := run(ctx, g.RepoDir, "commit", "-m", message); err != nil {
		return false, fmt.Errorf("publish: git commit: %w", err)
	}

	if _, err := run(ctx, g.RepoDir, "push", g.Remote, g.Branch); err != nil {
		appLog.Info("publish: push failed, trying pull --rebase", "remote", g.Remote, "branch", g.Branch)
		if _, perr := run(ctx, g.RepoDir, "pull", g.Remote, g.Branch, "--rebase"); perr != nil {
			return true, fmt.Errorf("publish: git pull --rebase: %w", perr)
		}
		if _, err := run(ctx, g.RepoDir, "push", g.Remote, g.Branch); err != nil {
			return true, fmt.Errorf("publish: git push after rebase: %w", err)
		}
		appLog.Info("publish: pushed after rebase")
		return true, nil
	}

	appLog.Info("publish: committed and pushed", "message", message)
	return true, nil
}

// ExecGit runs the git binary.
func ExecGit(ctx context.Context, dir string, args ...string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	appLog.Debug("git", "dir", dir, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %v: %s", args[0], err, strings.TrimSpace(errBuf.String()))
	}
	return out.String(), nil
}
