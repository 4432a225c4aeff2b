package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/pipeline"
)

// consoleSink prints workflow messages, coloured by level.
type consoleSink struct {
	out    io.Writer
	colors map[pipeline.Level]*color.Color
}

func newConsoleSink(out io.Writer, colorize bool) *consoleSink {
	colors := map[pipeline.Level]*color.Color{
		pipeline.LevelHeader:   color.New(color.FgCyan),
		pipeline.LevelProgress: color.New(color.FgYellow),
		pipeline.LevelSuccess:  color.New(color.FgGreen),
		pipeline.LevelFailure:  color.New(color.FgRed),
	}
	for _, c := range colors {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &consoleSink{out: out, colors: colors}
}

func (s *consoleSink) Emit(e pipeline.Event) {
	c, ok := s.colors[e.Level]
	if !ok {
		fmt.Fprintln(s.out, e.Message)
		return
	}
	c.Fprintln(s.out, e.Message)
}

// unattended reports whether the run needs no console: downloads are
// pre-approved and stdout is not a terminal.
func unattended(colorize, assumeYes bool) bool {
	return !colorize && assumeYes
}

// newSink returns the coloured console sink, or one JSON event per line on
// out for unattended runs.
func newSink(out io.Writer, colorize, assumeYes bool) pipeline.Sink {
	if unattended(colorize, assumeYes) {
		return pipeline.NewLogSink(slog.New(slog.NewJSONHandler(out, nil)))
	}
	return newConsoleSink(out, colorize)
}

// linePrompter reads answers line by line. End of input counts as an empty
// answer. A read blocked on input is abandoned when ctx is done; the next
// prompt picks up the same pending line.
type linePrompter struct {
	in      *bufio.Reader
	out     io.Writer
	prompt  *color.Color
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func newLinePrompter(in io.Reader, out io.Writer, colorize bool) *linePrompter {
	prompt := color.New(color.FgYellow)
	if colorize {
		prompt.EnableColor()
	} else {
		prompt.DisableColor()
	}
	return &linePrompter{in: bufio.NewReader(in), out: out, prompt: prompt}
}

func (p *linePrompter) ThemeName(ctx context.Context) (string, error) {
	fmt.Fprint(p.out, "Enter the theme name: ")
	return p.readLine(ctx)
}

func (p *linePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.prompt.Fprint(p.out, "\n"+question+": ")
	answer, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	return pipeline.ParseConfirmation(answer), nil
}

func (p *linePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.pending == nil {
		p.pending = make(chan lineResult, 1)
		go func(in *bufio.Reader, ch chan<- lineResult) {
			line, err := in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}(p.in, p.pending)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return "", fmt.Errorf("read input: %w", r.err)
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}
