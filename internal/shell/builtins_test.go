package shell

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/th3oth3rjak3/smallsh/internal/config"
	"github.com/th3oth3rjak3/smallsh/internal/parser"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	cfg := &config.Config{Prompt: ":", MaxJobs: 4, HomeDir: t.TempDir()}
	s := &Shell{
		config:   cfg,
		state:    NewState(),
		registry: NewRegistry(cfg.MaxJobs),
		stdout:   &out,
		stderr:   &errOut,
		prompt:   cfg.Prompt,
		pid:      os.Getpid(),
	}
	return s, &out, &errOut
}

func TestStatusDefault(t *testing.T) {
	s, out, _ := newTestShell(t)
	s.reportStatus()
	if got := out.String(); got != "Exit status: 0\n" {
		t.Fatalf("unexpected status: %q", got)
	}
}

func TestStatusAfterExit(t *testing.T) {
	s, out, _ := newTestShell(t)
	s.fgStatus = Status{Code: 7}
	s.reportStatus()
	if got := out.String(); got != "Exit status: 7\n" {
		t.Fatalf("unexpected status: %q", got)
	}
}

func TestStatusAfterSignal(t *testing.T) {
	s, out, _ := newTestShell(t)
	s.fgStatus = Status{Signaled: true, Signal: 9}
	s.reportStatus()
	if got := out.String(); got != "Terminated by signal: 9\n" {
		t.Fatalf("unexpected status: %q", got)
	}
}

func TestStatusDoesNotChangeStatus(t *testing.T) {
	s, _, _ := newTestShell(t)
	s.fgStatus = Status{Code: 3}
	s.reportStatus()
	if s.fgStatus.Code != 3 {
		t.Fatal("status builtin must not mutate the recorded status")
	}
}

func TestChangeDirectoryHome(t *testing.T) {
	s, _, _ := newTestShell(t)

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	home := t.TempDir()
	t.Setenv("HOME", home)

	s.changeDirectory(nil)

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	same, err := sameDir(cwd, home)
	if err != nil {
		t.Fatal(err)
	}
	if !same {
		t.Fatalf("expected cwd %q, got %q", home, cwd)
	}
}

func TestChangeDirectoryInvalid(t *testing.T) {
	s, _, errOut := newTestShell(t)

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	s.changeDirectory([]string{"/definitely/not/a/real/path"})

	if !strings.Contains(errOut.String(), "no such file or directory") {
		t.Fatalf("expected cd failure report, got %q", errOut.String())
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if cwd != orig {
		t.Fatalf("cwd must be unchanged after failed cd, got %q", cwd)
	}
}

func TestChangeDirectoryTooManyArgs(t *testing.T) {
	s, _, errOut := newTestShell(t)

	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	s.changeDirectory([]string{"/tmp", "/var"})

	if !strings.Contains(errOut.String(), "too many arguments") {
		t.Fatalf("expected usage report, got %q", errOut.String())
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if cwd != orig {
		t.Fatalf("cwd must be unchanged, got %q", cwd)
	}
}

func TestRunBuiltinComment(t *testing.T) {
	s, out, errOut := newTestShell(t)
	if !s.runBuiltin(parser.Command{Args: []string{"#note"}, Comment: true}) {
		t.Fatal("comment must be consumed as a builtin")
	}
	if out.Len() != 0 || errOut.Len() != 0 {
		t.Fatal("comment must produce no output")
	}
}

func TestRunBuiltinUnknown(t *testing.T) {
	s, _, _ := newTestShell(t)
	if s.runBuiltin(parser.Command{Args: []string{"ls"}}) {
		t.Fatal("ls is not a builtin")
	}
}

func TestExitClearsRegistryAndTerminates(t *testing.T) {
	s, _, _ := newTestShell(t)

	// PIDs far above any live process; the kill pass ignores ESRCH.
	if err := s.registry.Add(4999991); err != nil {
		t.Fatal(err)
	}
	if err := s.registry.Add(4999992); err != nil {
		t.Fatal(err)
	}

	s.shutdown()

	if !s.done {
		t.Fatal("exit must set the termination flag")
	}
	if got := s.registry.Pids(); len(got) != 0 {
		t.Fatalf("registry must be cleared on exit, got %v", got)
	}
}

func sameDir(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
