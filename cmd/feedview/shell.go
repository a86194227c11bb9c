package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bft-labs/feedview/pkg/feedview"
	"github.com/bft-labs/feedview/pkg/log"
)

var errQuit = errors.New("quit")

type commandKind int

const (
	cmdNone commandKind = iota
	cmdOpen
	cmdRefresh
	cmdList
	cmdStatus
	cmdQuit
	cmdHelp
)

type command struct {
	kind commandKind
	// position is 0-based; the table shows positions from 1.
	position int
}

// parseCommand reads one line of interactive input. Blank lines parse to cmdNone.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdNone}, nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]
	switch name {
	case "open", "o":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: open N")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return command{}, fmt.Errorf("invalid entry number %q", args[0])
		}
		return command{kind: cmdOpen, position: n - 1}, nil
	case "refresh", "r":
		return command{kind: cmdRefresh}, nil
	case "list", "l":
		return command{kind: cmdList}, nil
	case "status", "s":
		return command{kind: cmdStatus}, nil
	case "quit", "q", "exit":
		return command{kind: cmdQuit}, nil
	case "help", "h", "?":
		return command{kind: cmdHelp}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q (type help)", fields[0])
	}
}

// viewer is the part of feedview.Viewer the shell drives.
type viewer interface {
	Select(ctx context.Context, position int) error
	Refresh()
	Status() feedview.State
	Indicator() feedview.SyncState
}

type redrawer interface {
	Redraw()
}

type shell struct {
	viewer   viewer
	renderer redrawer
	out      io.Writer
	logger   feedview.Logger
}

func scanLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// run executes commands until quit or ctx ends. Closed input leaves the
// viewer running until ctx ends.
func (s *shell) run(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				s.logger.Debug("input closed; waiting for signal")
				lines = nil
				continue
			}
			if err := s.exec(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) error {
	cmd, err := parseCommand(line)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return nil
	}

	switch cmd.kind {
	case cmdOpen:
		// selection errors are already shown by the error reporter
		if err := s.viewer.Select(ctx, cmd.position); err != nil {
			s.logger.Debug("select failed", log.Int("position", cmd.position), log.Err(err))
		}
	case cmdRefresh:
		s.viewer.Refresh()
	case cmdList:
		s.renderer.Redraw()
	case cmdStatus:
		fmt.Fprintf(s.out, "viewer: %s, sync: %s\n", s.viewer.Status(), s.viewer.Indicator())
	case cmdQuit:
		return errQuit
	case cmdHelp:
		fmt.Fprintln(s.out, "commands: open N | refresh | list | status | quit")
	}
	return nil
}
