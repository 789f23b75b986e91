// Package main provides a performance benchmarking tool for the dendro CLI.
// It generates synthetic Tucson ring-width sites of increasing size, times
// dendro xdate on each of them at several worker counts, treating the first
// successful run as cold and averaging the rest as warm, and writes the
// results to CSV for performance analysis and documentation.
//
// Prerequisites:
// - dendro binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated sites (defaults to a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/dendro/internal/dataio"
	"github.com/huangsam/dendro/schema"
)

// SiteSize describes one synthetic site.
type SiteSize struct {
	Name   string
	Series int
	Years  int
}

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Site     string
	Command  string
	Workers  int
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Workers  []int
	Runs     int
	Sites    []SiteSize
	Commands [][]string
}

func main() {
	if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := ""
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else {
		dir, err := os.MkdirTemp("", "dendro-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	}

	config := BenchmarkConfig{
		WorkDir: workDir,
		Timeout: 5 * time.Minute,
		Workers: []int{1, 4, 14},
		Runs:    4,
		Sites: []SiteSize{
			{Name: "small", Series: 20, Years: 200},
			{Name: "medium", Series: 80, Years: 400},
			{Name: "large", Series: 250, Years: 800},
		},
		Commands: [][]string{
			{"xdate"},
			{"xdate", "--correlation", "pearson", "--slide-period", "30"},
			{"stabilize"},
		},
	}

	if _, err := exec.LookPath("dendro"); err != nil {
		fmt.Printf("Prerequisites check failed: dendro binary not found in PATH\n")
		os.Exit(1)
	}

	paths, err := generateSites(config)
	if err != nil {
		fmt.Printf("Failed to generate sites: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, paths)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generateSites writes one RWL file per configured site size.
func generateSites(config BenchmarkConfig) (map[string]string, error) {
	rng := rand.New(rand.NewSource(1))
	paths := make(map[string]string, len(config.Sites))
	for _, size := range config.Sites {
		ds, err := syntheticSite(rng, size)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(config.WorkDir, size.Name+".rwl")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := dataio.WriteRWL(f, ds); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		fmt.Printf("Generated %s: %d series over %d years\n", path, size.Series, size.Years)
		paths[size.Name] = path
	}
	return paths, nil
}

// syntheticSite builds series that share a climate signal under a negative
// exponential growth curve, with staggered pith and bark years.
func syntheticSite(rng *rand.Rand, size SiteSize) (*schema.Dataset, error) {
	years := make([]int, size.Years)
	signal := make([]float64, size.Years)
	for i := range years {
		years[i] = 2000 - size.Years + i
		signal[i] = rng.NormFloat64()
	}

	series := make([]schema.Series, size.Series)
	for s := range series {
		first := rng.Intn(size.Years / 3)
		last := size.Years - 1 - rng.Intn(size.Years/10)
		values := make([]float64, size.Years)
		for i := range values {
			if i < first || i > last {
				values[i] = math.NaN()
				continue
			}
			age := float64(i - first)
			growth := 0.4 + 1.6*math.Exp(-age/60)
			values[i] = math.Max(growth*(1+0.25*signal[i]+0.1*rng.NormFloat64()), 0.01)
		}
		series[s] = schema.NewSeries(fmt.Sprintf("BEN%04d", s+1), values)
	}
	return schema.NewDataset(years, series)
}

// runBenchmarks executes every command on every site at every worker count.
func runBenchmarks(config BenchmarkConfig, paths map[string]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sites, %v timeout, workers %v, %d runs\n",
		len(config.Sites), config.Timeout, config.Workers, config.Runs)

	for _, size := range config.Sites {
		fmt.Printf("Benchmarking %s\n", size.Name)
		for _, command := range config.Commands {
			for _, workers := range config.Workers {
				results = append(results, runBenchmarkSuite(config, size.Name, paths[size.Name], command, workers))
			}
		}
	}

	return results
}

// runBenchmarkSuite times one command and summarizes its runs.
func runBenchmarkSuite(config BenchmarkConfig, site, path string, command []string, workers int) BenchmarkResult {
	label := strings.Join(command, " ")
	fmt.Printf("Running %s on %s with %d workers\n", label, site, workers)

	cold, times := runBenchmark(config, path, command, workers)

	coldStr := "TIMEOUT"
	if cold > 0 {
		coldStr = fmt.Sprintf("%.3fs", cold)
	}
	warmStr := "TIMEOUT"
	if len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		warmStr = fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldStr, warmStr)

	return BenchmarkResult{
		Site:     site,
		Command:  label,
		Workers:  workers,
		ColdTime: coldStr,
		WarmTime: warmStr,
	}
}

// runBenchmark executes a dendro command multiple times and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, path string, command []string, workers int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command[0], path}, command[1:]...)
	args = append(args, "--workers", strconv.Itoa(workers))

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("dendro", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command[0]) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "xdate" {
		return strings.Contains(outputStr, "Crossdated") && strings.Contains(outputStr, "workers")
	}
	return strings.Contains(outputStr, "completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("dendro_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"site", "cmd", "workers", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Site, result.Command, strconv.Itoa(result.Workers), result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s %-45s workers=%-3d Cold: %s, Warm: %s\n",
			result.Site, result.Command, result.Workers, result.ColdTime, result.WarmTime)
	}
}
