package publish

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeGit struct {
	calls  []string
	status string
	fail   map[string]int // command -> number of times it fails
}

func (f *fakeGit) run(_ context.Context, _ string, args ...string) (string, error) {
	cmd := args[0]
	f.calls = append(f.calls, strings.Join(args, " "))
	if f.fail[cmd] > 0 {
		f.fail[cmd]--
		return "", errors.New(cmd + " failed")
	}
	if cmd == "status" {
		return f.status, nil
	}
	return "", nil
}

func TestPublishCommitsAndPushes(t *testing.T) {
	f := &fakeGit{status: " M slides/gantt_2025_06.png\n"}
	g := &Git{RepoDir: "/repo", Remote: "origin", Branch: "main", Run: f.run}

	committed, err := g.Publish(context.Background(), "Auto-update: Calendar view", "slides")
	if err != nil || !committed {
		t.Fatalf("Publish = %v, %v", committed, err)
	}
	want := []string{
		"rev-parse --is-inside-work-tree",
		"add -- slides",
		"status --porcelain -- slides",
		"commit -m Auto-update: Calendar view",
		"push origin main",
	}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("calls = %q", f.calls)
	}
}

func TestPublishNoChanges(t *testing.T) {
	f := &fakeGit{status: "\n"}
	g := &Git{RepoDir: "/repo", Remote: "origin", Branch: "main", Run: f.run}

	committed, err := g.Publish(context.Background(), "msg", "slides")
	if err != nil || committed {
		t.Fatalf("Publish = %v, %v; want no commit", committed, err)
	}
	for _, c := range f.calls {
		if strings.HasPrefix(c, "commit") || strings.HasPrefix(c, "push") {
			t.Errorf("unexpected %q", c)
		}
	}
}

func TestPublishRebasesOnRejectedPush(t *testing.T) {
	f := &fakeGit{status: "A x\n", fail: map[string]int{"push": 1}}
	g := &Git{RepoDir: "/repo", Remote: "origin", Branch: "main", Run: f.run}

	committed, err := g.Publish(context.Background(), "msg")
	if err != nil || !committed {
		t.Fatalf("Publish = %v, %v", committed, err)
	}
	tail := f.calls[len(f.calls)-3:]
	want := []string{"push origin main", "pull origin main --rebase", "push origin main"}
	if !reflect.DeepEqual(tail, want) {
		t.Errorf("tail calls = %q", tail)
	}
}

func TestPublishNotARepository(t *testing.T) {
	f := &fakeGit{fail: map[string]int{"rev-parse": 1}}
	g := &Git{RepoDir: "/tmp", Run: f.run}

	_, err := g.Publish(context.Background(), "msg")
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("err = %v, want ErrNotRepository", err)
	}
}

func TestDefaultMessage(t *testing.T) {
	got := DefaultMessage(time.Date(2025, 6, 15, 6, 5, 0, 0, time.UTC))
	if got != "Auto-update dashboard images - 2025-06-15 06:05:00" {
		t.Errorf("DefaultMessage = %q", got)
	}
}
