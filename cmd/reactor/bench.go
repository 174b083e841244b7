package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactor"
)

type benchProfile struct {
	Name      string
	Depth     int // compute chain length
	Width     int // fan-in input count
	Mutations int // SetValue calls per workload
	Callbacks int // callbacks attached to the tail cell
}

var benchProfiles = map[string]benchProfile{
	"fast": {
		Name:      "fast",
		Depth:     16,
		Width:     8,
		Mutations: 2_000,
		Callbacks: 4,
	},
	"standard": {
		Name:      "standard",
		Depth:     64,
		Width:     32,
		Mutations: 10_000,
		Callbacks: 16,
	},
	"stress": {
		Name:      "stress",
		Depth:     256,
		Width:     128,
		Mutations: 50_000,
		Callbacks: 64,
	},
}

func benchCmd() *cobra.Command {
	var (
		profileName string
		jsonOut     string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark SetValue throughput",
		Long: `Benchmark mutation throughput on synthetic graphs.

Two workloads run per profile:

  chain   one input feeding a deep compute chain, callbacks at the tail
  fan-in  many inputs feeding a single sum cell

Profiles: fast, standard, stress.

Examples:
  reactor bench
  reactor bench --profile=stress --json=bench.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(profileName, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "standard", "Profile: fast|standard|stress")
	cmd.Flags().StringVar(&jsonOut, "json", "", "JSON report path ('-' for stdout)")

	return cmd
}

// benchObserver counts evaluations and callback firings during a
// workload.
type benchObserver struct {
	reactor.NopObserver
	evaluations uint64
	fired       uint64
}

func (o *benchObserver) CellEvaluated(reactor.ComputeCellID) {
	o.evaluations++
}

func (o *benchObserver) CallbackFired(reactor.ComputeCellID, reactor.CallbackID, any) {
	o.fired++
}

type workloadResult struct {
	Mutations       int         `json:"mutations"`
	Evaluations     uint64      `json:"evaluations"`
	CallbacksFired  uint64      `json:"callbacks_fired"`
	ElapsedMS       float64     `json:"elapsed_ms"`
	MutationsPerSec float64     `json:"mutations_per_sec"`
	LatencyUS       latencyInfo `json:"latency_us"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type benchReport struct {
	Version string         `json:"version"`
	Run     runInfo        `json:"run"`
	Profile profileInfo    `json:"profile"`
	Chain   workloadResult `json:"chain"`
	FanIn   workloadResult `json:"fan_in"`
	GC      gcInfo         `json:"gc"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type profileInfo struct {
	Name      string `json:"name"`
	Depth     int    `json:"depth"`
	Width     int    `json:"width"`
	Mutations int    `json:"mutations"`
	Callbacks int    `json:"callbacks"`
}

type gcInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

func runBench(profileName, jsonOut string) error {
	name := strings.ToLower(strings.TrimSpace(profileName))
	prof, ok := benchProfiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q", profileName)
	}

	printBanner()
	fmt.Println("  bench")
	fmt.Println()
	info("profile: %s (depth %d, width %d, %d mutations, %d callbacks)",
		prof.Name, prof.Depth, prof.Width, prof.Mutations, prof.Callbacks)
	fmt.Println()

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	chain, err := runChainWorkload(prof)
	if err != nil {
		return err
	}
	fanIn, err := runFanInWorkload(prof)
	if err != nil {
		return err
	}

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	report := benchReport{
		Version: version,
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Profile: profileInfo{
			Name:      prof.Name,
			Depth:     prof.Depth,
			Width:     prof.Width,
			Mutations: prof.Mutations,
			Callbacks: prof.Callbacks,
		},
		Chain: chain,
		FanIn: fanIn,
		GC: gcInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: ms(time.Duration(after.PauseTotalNs - before.PauseTotalNs)),
		},
	}

	printWorkload("chain", chain)
	printWorkload("fan-in", fanIn)
	fmt.Println("  gc:")
	info("alloc: %.2f MB, cycles: %d, pause total: %.2f ms",
		report.GC.AllocMB, report.GC.NumGC, report.GC.PauseTotalMS)

	if jsonOut != "" {
		return writeBenchJSON(jsonOut, report)
	}
	return nil
}

// runChainWorkload mutates one input feeding a Depth-deep chain of
// increment cells, callbacks attached at the tail.
func runChainWorkload(prof benchProfile) (workloadResult, error) {
	counter := &benchObserver{}
	r := reactor.New[int](reactor.WithObserver[int](counter))

	in := r.CreateInput(0)
	deps := []reactor.CellID{in}
	var tail reactor.ComputeCellID
	for i := 0; i < prof.Depth; i++ {
		cell, err := r.CreateCompute(deps, func(vs []int) int { return vs[0] + 1 })
		if err != nil {
			return workloadResult{}, err
		}
		deps = []reactor.CellID{cell}
		tail = cell
	}
	for i := 0; i < prof.Callbacks; i++ {
		if _, ok := r.AddCallback(tail, func(int) {}); !ok {
			return workloadResult{}, fmt.Errorf("failed to attach chain callback")
		}
	}

	samples := make([]time.Duration, 0, prof.Mutations)
	start := time.Now()
	for i := 1; i <= prof.Mutations; i++ {
		t0 := time.Now()
		if !r.SetValue(in, i) {
			return workloadResult{}, fmt.Errorf("chain SetValue failed at step %d", i)
		}
		samples = append(samples, time.Since(t0))
	}
	elapsed := time.Since(start)

	return summarize(prof.Mutations, elapsed, samples, counter), nil
}

// runFanInWorkload mutates Width inputs feeding a single sum cell,
// round-robin.
func runFanInWorkload(prof benchProfile) (workloadResult, error) {
	counter := &benchObserver{}
	r := reactor.New[int](reactor.WithObserver[int](counter))

	inputs := make([]reactor.InputCellID, prof.Width)
	deps := make([]reactor.CellID, prof.Width)
	for i := range inputs {
		inputs[i] = r.CreateInput(-1)
		deps[i] = inputs[i]
	}
	sum, err := r.CreateCompute(deps, func(vs []int) int {
		total := 0
		for _, v := range vs {
			total += v
		}
		return total
	})
	if err != nil {
		return workloadResult{}, err
	}
	for i := 0; i < prof.Callbacks; i++ {
		if _, ok := r.AddCallback(sum, func(int) {}); !ok {
			return workloadResult{}, fmt.Errorf("failed to attach fan-in callback")
		}
	}

	samples := make([]time.Duration, 0, prof.Mutations)
	start := time.Now()
	for i := 0; i < prof.Mutations; i++ {
		in := inputs[i%len(inputs)]
		t0 := time.Now()
		if !r.SetValue(in, i) {
			return workloadResult{}, fmt.Errorf("fan-in SetValue failed at step %d", i)
		}
		samples = append(samples, time.Since(t0))
	}
	elapsed := time.Since(start)

	return summarize(prof.Mutations, elapsed, samples, counter), nil
}

func summarize(mutations int, elapsed time.Duration, samples []time.Duration, counter *benchObserver) workloadResult {
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	elapsedSeconds := math.Max(0.001, elapsed.Seconds())
	latency := latencyInfo{}
	if len(samples) > 0 {
		latency = latencyInfo{
			Min: us(samples[0]),
			P50: us(percentile(samples, 0.50)),
			P95: us(percentile(samples, 0.95)),
			P99: us(percentile(samples, 0.99)),
			Max: us(samples[len(samples)-1]),
		}
	}

	return workloadResult{
		Mutations:       mutations,
		Evaluations:     counter.evaluations,
		CallbacksFired:  counter.fired,
		ElapsedMS:       ms(elapsed),
		MutationsPerSec: float64(mutations) / elapsedSeconds,
		LatencyUS:       latency,
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func printWorkload(name string, res workloadResult) {
	fmt.Printf("  %s:\n", name)
	info("throughput: %.0f mutations/s (%d in %.1f ms)",
		res.MutationsPerSec, res.Mutations, res.ElapsedMS)
	info("latency p50/p95/p99: %.1f / %.1f / %.1f us",
		res.LatencyUS.P50, res.LatencyUS.P95, res.LatencyUS.P99)
	info("evaluations: %d, callbacks fired: %d", res.Evaluations, res.CallbacksFired)
	fmt.Println()
}

func writeBenchJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
