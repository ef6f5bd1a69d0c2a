// Command sigflow-log views and analyzes sigflow event log files.
//
// Log files are created with log.FileLogger when an application wires a
// file logger into its signals and dispatcher.
//
// Usage:
//
//	sigflow-log <command> [flags] <file.slog>
//
// Commands:
//
//	view     View log file in human-readable format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	sigflow-log view session.slog
//
//	# View only put events for one signal
//	sigflow-log view -category put -signal stage-x-setpoint session.slog
//
//	# Filter by session and save to a new file
//	sigflow-log filter -session 1b4e28ba -o filtered.slog session.slog
//
//	# Show statistics
//	sigflow-log stats session.slog
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sigflow/sigflow-go/pkg/log"
)

const usage = `sigflow-log - Event Log Analyzer

Usage:
  sigflow-log <command> [flags] <file.slog>

Commands:
  view     View log file in human-readable format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "sigflow-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs and returns a
// builder that assembles the log.Filter after parsing.
func filterFlags(fs *flag.FlagSet) func() (log.Filter, error) {
	category := fs.String("category", "", "Filter by category (connect, monitor, put, cache, dispatch, error)")
	session := fs.String("session", "", "Filter by session ID")
	device := fs.String("device", "", "Filter by device name")
	signal := fs.String("signal", "", "Filter by signal name")

	return func() (log.Filter, error) {
		filter := log.Filter{
			SessionID: *session,
			Device:    *device,
			Signal:    *signal,
		}
		if *category != "" {
			c, err := parseCategory(*category)
			if err != nil {
				return log.Filter{}, err
			}
			filter.Category = &c
		}
		return filter, nil
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "connect":
		return log.CategoryConnect, nil
	case "monitor":
		return log.CategoryMonitor, nil
	case "put":
		return log.CategoryPut, nil
	case "cache":
		return log.CategoryCache, nil
	case "dispatch":
		return log.CategoryDispatch, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	build := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	filter, err := build()
	if err != nil {
		fatal(err)
	}
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		fatal(err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fatal(err)
		}
		printEvent(os.Stdout, event)
	}
}

func printEvent(w io.Writer, e log.Event) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-8s", e.Timestamp.Format("15:04:05.000000"), e.Category)
	if e.Signal != "" {
		fmt.Fprintf(&b, " %s", e.Signal)
	} else if e.Device != "" {
		fmt.Fprintf(&b, " %s", e.Device)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " [%s]", e.Source)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, " %s", e.Message)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " value=%v", e.Value)
	}
	if e.Error != nil {
		fmt.Fprintf(&b, " error=%q", e.Error.Message)
		if e.Error.Context != "" {
			fmt.Fprintf(&b, " context=%s", e.Error.Context)
		}
	}
	fmt.Fprintln(w, b.String())
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	out := fs.String("o", "", "Output file path (required)")
	build := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *out == "" {
		fatal(fmt.Errorf("output file path required (-o)"))
	}
	path := requireFile(fs)

	filter, err := build()
	if err != nil {
		fatal(err)
	}
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		fatal(err)
	}
	defer reader.Close()

	writer, err := log.NewFileLogger(*out)
	if err != nil {
		fatal(err)
	}

	var count int
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fatal(err)
		}
		writer.Log(event)
		count++
	}
	if err := writer.Close(); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %d events to %s\n", count, *out)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireFile(fs)

	reader, err := log.NewReader(path)
	if err != nil {
		fatal(err)
	}
	defer reader.Close()

	var (
		total      int
		errors     int
		categories = make(map[log.Category]int)
		signals    = make(map[string]int)
		sessions   = make(map[string]struct{})
	)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fatal(err)
		}
		total++
		categories[event.Category]++
		if event.Signal != "" {
			signals[event.Signal]++
		}
		if event.SessionID != "" {
			sessions[event.SessionID] = struct{}{}
		}
		if event.Error != nil {
			errors++
		}
	}

	fmt.Printf("Events:   %d\n", total)
	fmt.Printf("Errors:   %d\n", errors)
	fmt.Printf("Sessions: %d\n", len(sessions))

	fmt.Println("\nBy category:")
	for c := log.CategoryConnect; c <= log.CategoryError; c++ {
		if n := categories[c]; n > 0 {
			fmt.Printf("  %-10s %d\n", c, n)
		}
	}

	if len(signals) > 0 {
		names := make([]string, 0, len(signals))
		for name := range signals {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("\nBy signal:")
		for _, name := range names {
			fmt.Printf("  %-30s %d\n", name, signals[name])
		}
	}
}

func requireFile(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
