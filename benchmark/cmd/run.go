package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type BenchmarkResult struct {
	Name       string  `json:"name"`
	Framework  string  `json:"framework"`
	Category   string  `json:"category"`
	Iterations int64   `json:"iterations"`
	NsPerOp    float64 `json:"ns_per_op"`
	BytesPerOp int64   `json:"bytes_per_op"`
	AllocsOp   int64   `json:"allocs_per_op"`
}

var categoryOrder = []string{
	"Provide_Simple", "Provide_Chain",
	"Build_Chain",
	"Invoke_Singleton", "Invoke_Chain",
	"Named_10",
	"Lifecycle_10", "Lifecycle_50",
	"LifecycleWithWork_10", "LifecycleWithWork_50",
}

var categoryTitles = map[string]string{
	"Provide_Simple":       "Provider registration (simple)",
	"Provide_Chain":        "Provider registration (dependency chain)",
	"Build_Chain":          "Registration and construction (dependency chain)",
	"Invoke_Singleton":     "Resolution (singleton)",
	"Invoke_Chain":         "Resolution (dependency chain)",
	"Named_10":             "Named services (10)",
	"Lifecycle_10":         "Init/destroy (10 services)",
	"Lifecycle_50":         "Init/destroy (50 services)",
	"LifecycleWithWork_10": "Init/destroy with 1ms hooks (10 services)",
	"LifecycleWithWork_50": "Init/destroy with 1ms hooks (50 services)",
}

var frameworkColors = map[string]text.Colors{
	"Kiln": {text.FgGreen, text.Bold},
	"Do":   {text.FgYellow},
	"Dig":  {text.FgMagenta},
	"Fx":   {text.FgBlue},
}

var benchLine = regexp.MustCompile(`^Benchmark(\w+)-\d+\s+(\d+)\s+([\d.]+) ns/op\s+(\d+) B/op\s+(\d+) allocs/op`)

func main() {
	benchDir := ".."
	exportJSON := false
	for _, arg := range os.Args[1:] {
		if arg == "--json" {
			exportJSON = true
			continue
		}
		benchDir = arg
	}

	fmt.Println(text.Colors{text.Bold, text.FgCyan}.Sprint("Kiln DI benchmark suite"))
	fmt.Println(text.Faint.Sprint("Running benchmarks..."))
	fmt.Println()

	cmd := exec.Command("go", "test", "-bench=.", "-benchmem", "-count=3", "-benchtime=100ms")
	cmd.Dir = benchDir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "benchmark failed: %s\n", exitErr.Stderr)
		}
		os.Exit(1)
	}

	results := parseResults(output)
	groups := groupByCategory(results)

	for _, category := range orderedCategories(groups) {
		printCategory(category, groups[category])
	}
	printSummary(groups)

	if exportJSON {
		if err := writeJSON("benchmark_results.json", results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(text.Faint.Sprint("Results exported to benchmark_results.json"))
	}
}

// parseResults averages repeated runs of each benchmark.
func parseResults(output []byte) []BenchmarkResult {
	runs := make(map[string][]BenchmarkResult)
	var names []string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := benchLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		name := m[1]
		idx := strings.LastIndex(name, "_")
		if idx < 0 {
			continue
		}

		iterations, _ := strconv.ParseInt(m[2], 10, 64)
		nsPerOp, _ := strconv.ParseFloat(m[3], 64)
		bytesPerOp, _ := strconv.ParseInt(m[4], 10, 64)
		allocs, _ := strconv.ParseInt(m[5], 10, 64)

		if _, ok := runs[name]; !ok {
			names = append(names, name)
		}
		runs[name] = append(runs[name], BenchmarkResult{
			Name:       name,
			Framework:  name[idx+1:],
			Category:   name[:idx],
			Iterations: iterations,
			NsPerOp:    nsPerOp,
			BytesPerOp: bytesPerOp,
			AllocsOp:   allocs,
		})
	}

	results := make([]BenchmarkResult, 0, len(names))
	for _, name := range names {
		rs := runs[name]
		avg := rs[0]
		var ns float64
		var bytesTotal, allocsTotal int64
		for _, r := range rs {
			ns += r.NsPerOp
			bytesTotal += r.BytesPerOp
			allocsTotal += r.AllocsOp
		}
		n := int64(len(rs))
		avg.NsPerOp = ns / float64(n)
		avg.BytesPerOp = bytesTotal / n
		avg.AllocsOp = allocsTotal / n
		results = append(results, avg)
	}
	return results
}

func groupByCategory(results []BenchmarkResult) map[string][]BenchmarkResult {
	groups := make(map[string][]BenchmarkResult)
	for _, r := range results {
		groups[r.Category] = append(groups[r.Category], r)
	}
	for _, rs := range groups {
		slices.SortFunc(rs, func(a, b BenchmarkResult) int {
			switch {
			case a.NsPerOp < b.NsPerOp:
				return -1
			case a.NsPerOp > b.NsPerOp:
				return 1
			default:
				return 0
			}
		})
	}
	return groups
}

// orderedCategories lists known categories first, then the rest sorted by name.
func orderedCategories(groups map[string][]BenchmarkResult) []string {
	var ordered, extra []string
	for _, c := range categoryOrder {
		if _, ok := groups[c]; ok {
			ordered = append(ordered, c)
		}
	}
	for c := range groups {
		if !slices.Contains(categoryOrder, c) {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	return append(ordered, extra...)
}

func printCategory(category string, results []BenchmarkResult) {
	title, ok := categoryTitles[category]
	if !ok {
		title = strings.ReplaceAll(category, "_", " ")
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Framework", "Time/op", "B/op", "Allocs/op", "Relative"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	fastest := results[0].NsPerOp
	for i, r := range results {
		relative := "fastest"
		if i > 0 && fastest > 0 {
			relative = fmt.Sprintf("%.1fx", r.NsPerOp/fastest)
		}
		t.AppendRow(table.Row{
			colorize(r.Framework),
			formatNs(r.NsPerOp),
			r.BytesPerOp,
			r.AllocsOp,
			relative,
		})
	}
	t.Render()
	fmt.Println()
}

func printSummary(groups map[string][]BenchmarkResult) {
	wins := make(map[string]int)
	for _, rs := range groups {
		wins[rs[0].Framework]++
	}

	frameworks := make([]string, 0, len(wins))
	for fw := range wins {
		frameworks = append(frameworks, fw)
	}
	slices.SortFunc(frameworks, func(a, b string) int {
		if wins[a] != wins[b] {
			return wins[b] - wins[a]
		}
		return strings.Compare(a, b)
	})

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Summary")
	t.AppendHeader(table.Row{"Framework", "Fastest in"})
	for _, fw := range frameworks {
		t.AppendRow(table.Row{colorize(fw), fmt.Sprintf("%d/%d", wins[fw], len(groups))})
	}
	t.AppendFooter(table.Row{"Compared", "kiln, samber/do, uber/dig, uber/fx"})
	t.Render()
}

func colorize(framework string) string {
	colors, ok := frameworkColors[framework]
	if !ok {
		return framework
	}
	return colors.Sprint(framework)
}

func formatNs(ns float64) string {
	switch {
	case ns >= 1_000_000:
		return fmt.Sprintf("%.2f ms", ns/1_000_000)
	case ns >= 1_000:
		return fmt.Sprintf("%.2f µs", ns/1_000)
	default:
		return fmt.Sprintf("%.0f ns", ns)
	}
}

func writeJSON(path string, results []BenchmarkResult) error {
	data, err := json.MarshalIndent(struct {
		Benchmarks []BenchmarkResult `json:"benchmarks"`
	}{Benchmarks: results}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
