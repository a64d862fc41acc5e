package shell

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// State is the supervisor state shared between the control loop and the
// signal goroutine. Only the atomic fields are touched from the signal
// side; the goroutine performs no allocation and writes notices with a
// single direct os.Stdout write.
type State struct {
	bgAllowed     atomic.Bool
	busy          atomic.Bool
	pendingNotice atomic.Bool
}

func NewState() *State {
	st := &State{}
	st.bgAllowed.Store(true)
	return st
}

func (st *State) BackgroundAllowed() bool { return st.bgAllowed.Load() }

// toggleBackground flips background permission and returns the new value.
func (st *State) toggleBackground() bool {
	for {
		old := st.bgAllowed.Load()
		if st.bgAllowed.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (st *State) setBusy(busy bool) { st.busy.Store(busy) }

func (st *State) isBusy() bool { return st.busy.Load() }

// takePendingNotice consumes the deferred-notice flag, reporting whether
// one was pending.
func (st *State) takePendingNotice() bool {
	return st.pendingNotice.CompareAndSwap(true, false)
}

func (s *Shell) setupSignalHandling() {
	signal.Notify(s.signalChan, syscall.SIGINT, syscall.SIGTSTP)
	go s.handleSignals()
}

func (s *Shell) handleSignals() {
	for sig := range s.signalChan {
		switch sig {
		case syscall.SIGTSTP:
			enabled := s.state.toggleBackground()
			if s.state.isBusy() {
				// Defer the notice; the control loop replays it
				// once it returns to idle.
				s.state.pendingNotice.Store(true)
				continue
			}
			// Idle: write the notice and a fresh prompt marker in
			// one unbuffered write so nothing interleaves mid-line.
			os.Stdout.WriteString("\n" + modeNotice(enabled) + "\n" + s.prompt)
		case syscall.SIGINT:
			// The shell itself ignores interrupts. A foreground
			// child keeps the default disposition and terminates
			// on its own; background children run in their own
			// process group and never see terminal signals.
		}
	}
}

// flushPendingNotice replays a mode-change notice deferred while the loop
// was busy. No prompt marker is appended; the loop prints its own next.
func (s *Shell) flushPendingNotice() {
	if s.state.takePendingNotice() {
		fmt.Fprintf(s.stdout, "%s\n", modeNotice(s.state.BackgroundAllowed()))
	}
}

func modeNotice(enabled bool) string {
	if enabled {
		return "Background Mode Enabled"
	}
	return "Background Mode Disabled"
}
