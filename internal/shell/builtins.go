package shell

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/th3oth3rjak3/smallsh/internal/parser"
)

// runBuiltin handles cd, status, exit and comment lines in-process,
// reporting whether the command was consumed.
func (s *Shell) runBuiltin(cmd parser.Command) bool {
	if cmd.Comment {
		return true
	}

	switch cmd.Args[0] {
	case "cd":
		s.changeDirectory(cmd.Args[1:])
	case "status":
		s.reportStatus()
	case "exit":
		s.shutdown()
	default:
		return false
	}
	return true
}

func (s *Shell) changeDirectory(args []string) {
	if len(args) > 1 {
		fmt.Fprintln(s.stderr, "smallsh: cd: too many arguments")
		return
	}

	var dir string
	if len(args) == 0 {
		dir = os.Getenv("HOME")
		if dir == "" {
			dir = s.config.HomeDir
		}
	} else {
		dir = args[0]
	}

	if err := os.Chdir(dir); err != nil {
		fmt.Fprintf(s.stderr, "smallsh: cd: %s: no such file or directory\n", dir)
	}
}

// reportStatus prints the most recent foreground status. Before any
// foreground command has run it reports exit status 0.
func (s *Shell) reportStatus() {
	if s.fgStatus.Signaled {
		fmt.Fprintf(s.stdout, "Terminated by signal: %d\n", s.fgStatus.Signal)
	} else {
		fmt.Fprintf(s.stdout, "Exit status: %d\n", s.fgStatus.Code)
	}
}

// shutdown asks every tracked background job to terminate, immediately
// forces any still present, clears the registry and flags the control
// loop to exit. Builtins never call os.Exit themselves.
func (s *Shell) shutdown() {
	pids := s.registry.Pids()
	for _, pid := range pids {
		_ = unix.Kill(pid, unix.SIGTERM)
	}
	for _, pid := range pids {
		_ = unix.Kill(pid, unix.SIGKILL)
	}
	s.registry.Clear()
	s.done = true
}
