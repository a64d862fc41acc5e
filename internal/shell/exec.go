package shell

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/unix"

	"github.com/th3oth3rjak3/smallsh/internal/parser"
	"github.com/th3oth3rjak3/smallsh/internal/redirect"
)

// Status is the decoded wait status of the most recent foreground
// command, retained for the status builtin.
type Status struct {
	Code     int
	Signaled bool
	Signal   unix.Signal
}

func statusFromWait(ws unix.WaitStatus) Status {
	if ws.Signaled() {
		return Status{Signaled: true, Signal: ws.Signal()}
	}
	return Status{Code: ws.ExitStatus()}
}

// runExternal forks and execs a non-builtin command. Foreground children
// are waited on synchronously; background children are announced and
// tracked in the registry. Background dispatch falls back to foreground
// when background execution is currently disabled.
func (s *Shell) runExternal(cmd parser.Command) {
	binary, err := exec.LookPath(cmd.Args[0])
	if err != nil {
		fmt.Fprintf(s.stderr, "smallsh: %s: command not found\n", cmd.Args[0])
		s.fgStatus = Status{Code: 1}
		return
	}

	background := cmd.Background && s.state.BackgroundAllowed()

	files, closeFiles, err := s.redirectionFiles(cmd)
	if err != nil {
		closeFiles()
		fmt.Fprintf(s.stderr, "smallsh: %v\n", err)
		s.fgStatus = Status{Code: 1}
		return
	}
	defer closeFiles()

	// Background children get their own process group so terminal
	// signals never reach them; foreground children stay in ours and
	// keep the default terminate-on-interrupt disposition.
	attr := &syscall.ProcAttr{
		Files: files,
		Sys:   &syscall.SysProcAttr{Setpgid: background},
	}

	pid, err := syscall.ForkExec(binary, cmd.Args, attr)
	if err != nil {
		// Fork failure means the shell cannot perform its primary
		// function; treated as fatal by the control loop.
		s.fatal = fmt.Errorf("fork failed running %s: %w", shellquote.Join(cmd.Args...), err)
		return
	}

	if background {
		fmt.Fprintf(s.stdout, "Background PID: %d\n", pid)
		if err := s.registry.Add(pid); err != nil {
			fmt.Fprintf(s.stderr, "smallsh: %v: %s (PID %d) will not be tracked\n",
				err, shellquote.Join(cmd.Args...), pid)
		}
		return
	}

	s.waitForeground(pid)
}

// redirectionFiles resolves the command's redirections and builds the
// child's fd table (stdin, stdout, stderr). The returned func closes any
// files opened here once the child holds its own copies.
func (s *Shell) redirectionFiles(cmd parser.Command) ([]uintptr, func(), error) {
	stdin, stdout := os.Stdin, os.Stdout
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	if cmd.InFile != "" {
		path, err := redirect.Resolve(cmd.InFile, redirect.Input)
		if err != nil {
			return nil, closeAll, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, closeAll, &redirect.Error{Direction: redirect.Input, Path: path, Err: err}
		}
		opened = append(opened, f)
		stdin = f
	}

	if cmd.OutFile != "" {
		path, err := redirect.Resolve(cmd.OutFile, redirect.Output)
		if err != nil {
			return nil, closeAll, err
		}
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return nil, closeAll, &redirect.Error{Direction: redirect.Output, Path: path, Err: err}
		}
		opened = append(opened, f)
		stdout = f
	}

	return []uintptr{stdin.Fd(), stdout.Fd(), os.Stderr.Fd()}, closeAll, nil
}

// waitForeground blocks until pid terminates, resuming the wait after
// signal delivery. The raw status becomes the recorded foreground status;
// death by signal is reported on the spot.
func (s *Shell) waitForeground(pid int) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return
		}
		// Terminal stop/resume only toggles background mode; a child
		// stopped by it is resumed so the command keeps running and
		// the wait never wedges.
		if ws.Stopped() {
			_ = unix.Kill(pid, unix.SIGCONT)
			continue
		}
		break
	}

	s.fgStatus = statusFromWait(ws)
	if ws.Signaled() {
		fmt.Fprintf(s.stderr, "Terminated by signal: %d\n", ws.Signal())
	}
}

// reapBackground collects any terminated children without blocking and
// reports the ones we were tracking. Reap-any semantics: completions may
// be reported out of submission order, but each at most once.
func (s *Shell) reapBackground() {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}
		if !s.registry.Remove(pid) {
			continue
		}
		if ws.Signaled() {
			fmt.Fprintf(s.stdout, "PID %d terminated by signal: %d\n", pid, ws.Signal())
		} else {
			fmt.Fprintf(s.stdout, "PID %d finished with exit status: %d\n", pid, ws.ExitStatus())
		}
	}
}
