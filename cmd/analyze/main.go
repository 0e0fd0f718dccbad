// Command analyze scores a JSON array of health reports from a file or stdin
// and prints the resulting analysis.
//
// Usage:
//
//	go run ./cmd/analyze -in data/mock/village_reports.json -pretty
//	cat reports.json | go run ./cmd/analyze -in - -summary
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/couchcryptid/health-surveillance-service/internal/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", `path to a JSON array of reports, or "-" for stdin`)
	pretty := fs.Bool("pretty", false, "indent the JSON output")
	summary := fs.Bool("summary", false, "print a per-location text summary instead of JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *in == "" {
		fs.Usage()
		return 2
	}

	data, err := readInput(*in, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: read input: %v\n", err)
		return 1
	}

	reports, err := domain.DecodeReports(data)
	if err != nil {
		if errors.Is(err, domain.ErrNotArray) {
			fmt.Fprintln(stderr, "FATAL: Expecting a JSON array of reports")
			return 1
		}
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	analysis := domain.Analyze(reports)

	if *summary {
		printSummary(stdout, analysis)
		return 0
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(analysis); err != nil {
		fmt.Fprintf(stderr, "FATAL: encode analysis: %v\n", err)
		return 1
	}
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func printSummary(w io.Writer, a domain.Analysis) {
	fmt.Fprintf(w, "Reports: %d  Overall risk: %s\n\n", a.TotalReports, a.OverallRisk)

	locations := make([]string, 0, len(a.LocationSummary))
	for loc := range a.LocationSummary {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	flagged := make(map[string]bool, len(a.HighRiskLocations))
	for _, loc := range a.HighRiskLocations {
		flagged[loc] = true
	}

	for _, loc := range locations {
		s := a.LocationSummary[loc]
		marker := " "
		if flagged[loc] {
			marker = "!"
		}
		fmt.Fprintf(w, "%s %-24s High=%d Medium=%d Low=%d\n", marker, loc,
			s.RiskCounts[domain.RiskHigh], s.RiskCounts[domain.RiskMedium], s.RiskCounts[domain.RiskLow])
		for i, issue := range s.TopIssues {
			fmt.Fprintf(w, "    [%d] %s\n", i+1, issue)
		}
	}

	if len(a.HighRiskLocations) > 0 {
		fmt.Fprintf(w, "\nHigh-risk locations: %v\n", a.HighRiskLocations)
	}
}
