// Package shell implements the control loop and the process supervision
// behind it: dispatching parsed commands to builtins or child processes,
// tracking background jobs until they are reaped, and coordinating with
// the two interactive signals.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/th3oth3rjak3/smallsh/internal/config"
	"github.com/th3oth3rjak3/smallsh/internal/parser"
)

type Shell struct {
	config     *config.Config
	state      *State
	registry   *Registry
	fgStatus   Status
	signalChan chan os.Signal
	reader     *readline.Instance // nil when stdin is not a terminal
	scanner    *bufio.Scanner
	stdout     io.Writer
	stderr     io.Writer
	prompt     string
	pid        int
	inDefault  string
	outDefault string
	done       bool
	fatal      error
}

func New(cfg *config.Config) (*Shell, error) {
	s := &Shell{
		config:     cfg,
		state:      NewState(),
		registry:   NewRegistry(cfg.MaxJobs),
		signalChan: make(chan os.Signal, 1),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		prompt:     cfg.Prompt,
		pid:        os.Getpid(),
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:      cfg.Prompt,
			HistoryFile: cfg.HistoryFile,
		})
		if err != nil {
			return nil, fmt.Errorf("error initializing readline: %w", err)
		}
		s.reader = rl
	} else {
		s.scanner = bufio.NewScanner(os.Stdin)
	}

	return s, nil
}

// Run drives the control loop: reap finished jobs, replay any deferred
// mode notice, prompt, tokenize, dispatch. It returns when exit is issued,
// input reaches EOF, or a fork failure makes further work impossible.
func (s *Shell) Run() error {
	s.setupSignalHandling()
	defer func() {
		signal.Stop(s.signalChan)
		close(s.signalChan)
	}()
	if s.reader != nil {
		defer s.reader.Close()
	}

	for !s.done {
		s.reapBackground()
		s.flushPendingNotice()

		line, ok := s.readLine()
		if !ok {
			// EOF shuts down the same way exit does, so no
			// background job outlives the shell.
			s.shutdown()
			break
		}

		s.state.setBusy(true)
		s.dispatch(line)
		s.state.setBusy(false)

		if s.fatal != nil {
			return s.fatal
		}
	}

	return nil
}

func (s *Shell) readLine() (string, bool) {
	if s.reader != nil {
		line, err := s.reader.Readline()
		if err == readline.ErrInterrupt {
			return "", true
		}
		if err != nil {
			return "", false
		}
		return line, true
	}

	fmt.Fprint(s.stdout, s.prompt)
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}

func (s *Shell) dispatch(line string) {
	// Redirection defaults reset every iteration; a background command
	// with no explicit target reads from and writes to /dev/null.
	s.inDefault, s.outDefault = parser.DevNull, parser.DevNull

	cmd, in, out, err := parser.Parse(line, s.pid, s.state.BackgroundAllowed(), s.inDefault, s.outDefault)
	if err != nil {
		fmt.Fprintf(s.stderr, "smallsh: %v\n", err)
		return
	}
	s.inDefault, s.outDefault = in, out

	if len(cmd.Args) == 0 {
		return
	}

	if s.runBuiltin(cmd) {
		return
	}

	s.runExternal(cmd)
}
