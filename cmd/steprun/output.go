package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/scenario"
)

// outcomeView is the JSON form of an outcome.
type outcomeView struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title"`
	Result     outcome.Result `json:"result"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Counts     map[string]int `json:"counts"`
	Steps      []*stepView    `json:"steps"`
	Error      string         `json:"error,omitempty"`
}

// stepView is the JSON form of a step record.
type stepView struct {
	Description string         `json:"description"`
	Group       bool           `json:"group,omitempty"`
	Result      outcome.Result `json:"result"`
	DurationMS  int64          `json:"duration_ms"`
	Error       string         `json:"error,omitempty"`
	Evidence    string         `json:"evidence,omitempty"`
	EvidenceURL string         `json:"evidence_url,omitempty"`
	Children    []*stepView    `json:"children,omitempty"`
}

func newOutcomeView(o *outcome.TestOutcome) *outcomeView {
	counts := map[string]int{}
	for result, n := range o.Counts() {
		counts[string(result)] = n
	}
	return &outcomeView{
		ID:         o.ID,
		Title:      o.Title,
		Result:     o.Result(),
		StartedAt:  o.StartedAt,
		DurationMS: o.Duration.Milliseconds(),
		Counts:     counts,
		Steps:      newStepViews(o.Records),
	}
}

func newStepViews(records []*outcome.StepRecord) []*stepView {
	views := make([]*stepView, 0, len(records))
	for _, r := range records {
		views = append(views, &stepView{
			Description: r.Description,
			Group:       r.Group,
			Result:      r.Result,
			DurationMS:  r.Duration.Milliseconds(),
			Error:       r.ErrorMessage,
			Evidence:    r.EvidenceRef,
			Children:    newStepViews(r.Children),
		})
	}
	return views
}

// walkSteps calls fn for every step view, depth first.
func walkSteps(views []*stepView, fn func(*stepView)) {
	for _, v := range views {
		fn(v)
		walkSteps(v.Children, fn)
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func printMessage(msg string) {
	fmt.Println(msg)
}

func printRunResults(results []scenario.RunResult) {
	if flagJSON {
		views := make([]*outcomeView, 0, len(results))
		for _, r := range results {
			v := &outcomeView{Title: r.Title}
			if r.Outcome != nil {
				v = newOutcomeView(r.Outcome)
			}
			if r.Err != nil {
				v.Error = r.Err.Error()
			}
			views = append(views, v)
		}
		printJSON(views)
		return
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		result, duration := "-", "-"
		if r.Outcome != nil {
			result = string(r.Outcome.Result())
			duration = r.Outcome.Duration.Round(time.Millisecond).String()
		}
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		rows = append(rows, []string{r.Title, result, duration, errText})
	}
	printTable([]string{"SCENARIO", "RESULT", "DURATION", "ERROR"}, rows)
}

func printOutcome(o *outcome.TestOutcome) {
	if flagJSON {
		printJSON(newOutcomeView(o))
		return
	}
	fmt.Printf("%s  %s  (%s)\n", o.Title, o.Result(), o.Duration.Round(time.Millisecond))
	printSteps(o.Records, 1)
}

func printSteps(records []*outcome.StepRecord, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, r := range records {
		line := fmt.Sprintf("%s%-8s %s", indent, r.Result, r.Description)
		if r.ErrorMessage != "" {
			line += ": " + r.ErrorMessage
		}
		if r.EvidenceRef != "" {
			line += " [" + r.EvidenceRef + "]"
		}
		fmt.Println(line)
		printSteps(r.Children, depth+1)
	}
}
