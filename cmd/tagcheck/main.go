// Command tagcheck replays a narrator transcript against a world seed and
// reports what every tag would do, without Redis or an LLM.
//
//	tagcheck -seed data/worlds/thanh_van.json transcript.txt
//
// Paragraphs separated by blank lines are treated as consecutive turns.
// The exit status is 1 when any tag failed or named an unknown command.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/mutator"
	"github.com/jwebster45206/saga-engine/pkg/tags"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	appliedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			PaddingLeft(4)
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tagcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seedPath := fs.String("seed", "", "world seed JSON (defaults to an empty world)")
	outPath := fs.String("out", "", "write the final world JSON to this file")
	width := fs.Int("width", 80, "wrap notifications at this column")
	verbose := fs.Bool("v", false, "log dispatcher warnings to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tagcheck [flags] <transcript.txt>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ws := world.New()
	if *seedPath != "" {
		data, err := os.ReadFile(*seedPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read seed: %v\n", err)
			return 2
		}
		if ws, err = world.Parse(data); err != nil {
			fmt.Fprintf(stderr, "Invalid seed %s: %v\n", *seedPath, err)
			return 2
		}
		for _, problem := range ws.Integrity() {
			fmt.Fprintln(stdout, skippedStyle.Render("seed: "+problem.Error()))
		}
	}

	transcript, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read transcript: %v\n", err)
		return 2
	}

	dispatcher := mutator.NewDispatcher(logger)
	var applied, skipped, failed, unknown int

	for _, para := range paragraphs(string(transcript)) {
		batch := tags.Extract(para)
		res := dispatcher.Apply(ws, batch)
		next, expired, err := mutator.SweepEffects(res.World)
		if err != nil {
			fmt.Fprintf(stderr, "Turn %d: %v\n", ws.Turn+1, err)
			return 2
		}
		next.Turn++
		ws = next

		fmt.Fprintln(stdout, titleStyle.Render(fmt.Sprintf("Turn %d", ws.Turn)))
		if len(batch) == 0 {
			fmt.Fprintln(stdout, "  (no tags)")
		}
		for _, o := range res.Outcomes {
			line := fmt.Sprintf("  %-8s %s", o.Status, o.Tag)
			if o.Detail != "" {
				line += " (" + o.Detail + ")"
			}
			switch {
			case o.Kind == "":
				unknown++
				fmt.Fprintln(stdout, failedStyle.Render(line))
			case o.Status == command.StatusApplied:
				applied++
				fmt.Fprintln(stdout, appliedStyle.Render(line))
			case o.Status == command.StatusSkipped:
				skipped++
				fmt.Fprintln(stdout, skippedStyle.Render(line))
			default:
				failed++
				fmt.Fprintln(stdout, failedStyle.Render(line))
			}
		}
		for _, note := range append(res.Notifications, expired...) {
			fmt.Fprintln(stdout, noteStyle.Render(wordwrap.String(note, *width-4)))
		}
	}

	fmt.Fprintf(stdout, "\n%d turns: %d applied, %d skipped, %d failed, %d unknown\n",
		ws.Turn, applied, skipped, failed, unknown)

	if *outPath != "" {
		data, err := json.MarshalIndent(ws, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Failed to encode world: %v\n", err)
			return 2
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			fmt.Fprintf(stderr, "Failed to write %s: %v\n", *outPath, err)
			return 2
		}
	}

	if failed > 0 || unknown > 0 {
		return 1
	}
	return 0
}

// paragraphs splits on blank lines and drops empty chunks.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	var cur []string
	flush := func() {
		if p := strings.TrimSpace(strings.Join(cur, "\n")); p != "" {
			out = append(out, p)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}
