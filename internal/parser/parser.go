// Package parser turns one raw input line into an executable Command.
// Tokenization is purely lexical: whitespace-delimited words, standalone
// " < path" / " > path" redirection tokens and a trailing " &" background
// marker. There is no quoting or escaping.
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// DevNull is the default redirection target for background commands that
// do not name one explicitly.
const DevNull = "/dev/null"

// Command is a single parsed input line, consumed once by dispatch.
type Command struct {
	Args       []string
	Background bool
	Comment    bool
	InFile     string // empty means inherit stdin
	OutFile    string // empty means inherit stdout
}

// ParseError reports a redirection operator with no target before the end
// of the line.
type ParseError struct {
	Operator string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error: missing redirection target after %q", e.Operator)
}

// Parse tokenizes line into a Command. Every occurrence of $$ outside a
// redirection target is replaced by pid. A trailing " &" is always
// stripped, but only marks the command as background when bgAllowed is
// true; a background command with no explicit redirection for a direction
// gets the caller's current default for it.
//
// The returned path pair is the redirection defaults updated with any
// explicit targets seen on this line. A line with no words yields a
// Command with an empty Args slice and the caller should re-prompt.
func Parse(line string, pid int, bgAllowed bool, inDefault, outDefault string) (Command, string, string, error) {
	line = strings.TrimSuffix(line, "\n")

	var text strings.Builder
	var inPath, outPath string
	var haveIn, haveOut bool
	pidStr := strconv.Itoa(pid)

	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '$' && i+1 < len(line) && line[i+1] == '$':
			text.WriteString(pidStr)
			i++
		case (line[i] == '<' || line[i] == '>') &&
			(i == 0 || line[i-1] == ' ') &&
			(i+1 == len(line) || line[i+1] == ' '):
			op := line[i]
			i = skipSpaces(line, i+1)
			start := i
			for i < len(line) && line[i] != ' ' {
				i++
			}
			if start == i {
				return Command{}, inDefault, outDefault, &ParseError{Operator: string(op)}
			}
			// A later occurrence of the same operator overwrites
			// the earlier target.
			if op == '<' {
				inPath, haveIn = line[start:i], true
			} else {
				outPath, haveOut = line[start:i], true
			}
		default:
			text.WriteByte(line[i])
		}
	}

	cmdText := text.String()

	background := false
	if cut, ok := strings.CutSuffix(cmdText, " &"); ok {
		cmdText = cut
		if bgAllowed {
			background = true
		}
	}

	updatedIn, updatedOut := inDefault, outDefault
	if haveIn {
		updatedIn = inPath
	}
	if haveOut {
		updatedOut = outPath
	}

	args := strings.Fields(cmdText)
	if len(args) == 0 {
		return Command{}, updatedIn, updatedOut, nil
	}

	cmd := Command{Args: args, Background: background}
	if strings.HasPrefix(args[0], "#") {
		cmd.Comment = true
	}
	if haveIn {
		cmd.InFile = inPath
	}
	if haveOut {
		cmd.OutFile = outPath
	}
	if background {
		if cmd.InFile == "" {
			cmd.InFile = inDefault
		}
		if cmd.OutFile == "" {
			cmd.OutFile = outDefault
		}
	}

	return cmd, updatedIn, updatedOut, nil
}

func skipSpaces(line string, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
