package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/lemonberrylabs/unitconv/pkg/conversion"
	"github.com/lemonberrylabs/unitconv/pkg/store"
	"github.com/spf13/cobra"
)

const replHelp = `Enter an expression such as "3 ft + 2 in" or "60 mph in kph".
  :units [FILTER]   list matching units
  :all              show the last result in every unit of its measure
  :help             show this text
  :quit             leave`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive calculator",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	out := rl.Stdout()
	fmt.Fprintln(out, replHelp)

	sess := &session{store: s, cv: conversion.New(s.Snapshot()), out: out}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := sess.handle(strings.TrimSpace(line)); quit {
			return nil
		}
	}
}

type session struct {
	store *store.Store
	cv    *conversion.Converter
	out   io.Writer
}

// handle runs one line of input and reports whether the session ends.
func (s *session) handle(line string) bool {
	switch {
	case line == "":
	case line == ":quit" || line == ":q" || line == "quit" || line == "exit":
		return true
	case line == ":help":
		fmt.Fprintln(s.out, replHelp)
	case line == ":all":
		for _, q := range s.cv.Results() {
			fmt.Fprintf(s.out, "  = %s\n", q)
		}
	case line == ":units" || strings.HasPrefix(line, ":units "):
		filter := strings.TrimSpace(strings.TrimPrefix(line, ":units"))
		for _, u := range s.store.ListUnits(filter) {
			fmt.Fprintf(s.out, "  %s\n", u)
		}
	case strings.HasPrefix(line, ":"):
		fmt.Fprintf(s.out, "unknown command %q, try :help\n", line)
	default:
		r, err := s.cv.Evaluate(line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		printResult(s.out, r)
	}
	return false
}
