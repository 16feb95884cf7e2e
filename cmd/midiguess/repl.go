package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/leandrodaf/midiguess/internal/pedal"
	"github.com/leandrodaf/midiguess/internal/view"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

const helpText = `commands:
  play | pause | restart     control playback
  reveal                     spend a token to hear one more track
  toggle N                   mute or unmute track N
  mute | unmute              mute or unmute every track
  guess TEXT                 guess the game
  next                       load another random song
  answer                     show the song file name
  tracks                     show the track list
  help | quit`

// repl reads commands line by line. Output is serialised because pedal
// actions print from another goroutine.
type repl struct {
	ctx     context.Context
	session contracts.Session
	view    *view.Renderer
	mu      sync.Mutex
	out     io.Writer
}

func (r *repl) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	r.printf("> ")
	for sc.Scan() {
		if r.exec(sc.Text()) {
			return nil
		}
		r.printf("> ")
	}
	return sc.Err()
}

// exec runs one command line and reports whether the user asked to quit.
func (r *repl) exec(line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch cmd = strings.ToLower(cmd); cmd {
	case "":
	case "quit", "exit":
		return true
	case "help":
		r.printf("%s\n", helpText)
	case "tracks", "status":
		r.status()
	case "toggle":
		id, err := strconv.Atoi(arg)
		if err != nil {
			r.printf("usage: toggle N\n")
			return false
		}
		_, err = r.session.ToggleTrack(id)
		r.after(err)
	case "mute", "unmute":
		_, err := r.session.MuteAll(cmd == "mute")
		r.after(err)
	case "guess":
		if arg == "" {
			r.printf("usage: guess TEXT\n")
			return false
		}
		r.guess(arg)
	case "answer":
		id, err := r.session.RevealAnswer()
		if err != nil {
			r.report(err)
			return false
		}
		r.printf("the song was %s\n", id)
	default:
		a := contracts.ParseAction(cmd)
		if a == contracts.ActionNone {
			r.printf("unknown command %q, try help\n", cmd)
			return false
		}
		r.after(pedal.Apply(r.ctx, r.session, a))
	}
	return false
}

func (r *repl) guess(text string) {
	res, err := r.session.SubmitGuess(text)
	if err != nil {
		r.report(err)
		return
	}
	switch {
	case res.Matched:
		r.printf("correct!\n")
	case res.Score != nil:
		r.printf("not quite (score %.2f)\n", *res.Score)
	default:
		r.printf("not quite\n")
	}
}

// after reports err and prints the resulting state.
func (r *repl) after(err error) {
	if err != nil {
		r.report(err)
		if errors.Is(err, contracts.ErrNoSongLoaded) {
			return
		}
	}
	r.status()
}

func (r *repl) report(err error) {
	if errors.Is(err, contracts.ErrDisallowedAction) {
		r.printf("not allowed: %v\n", err)
		return
	}
	r.printf("error: %v\n", err)
}

func (r *repl) status() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.view.Render(r.out, r.session.Snapshot()); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

func (r *repl) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}
