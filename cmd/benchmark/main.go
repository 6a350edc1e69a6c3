package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/coursescheduler/internal/config"
	"github.com/limaJavier/coursescheduler/internal/csvio"
	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	executablePath = "../../bin/schedule"
	inputDirectory = "../../test/courses/"
	outFile        = "benchmark_results.csv"
	configFile     = ""
	timeout        = "10m"
	solvers        = []string{"gophersat", "kissat", "cadical", "minisat", "cryptominisat", "cbc"}
	constraintSets = []string{"none", "class", "class,teacher", "class,teacher,room"}
	results        = map[int]string{
		10: "scheduled",
		20: "infeasible",
		30: "timeout",
	}
)

type TestMetadata struct {
	Name     string
	Courses  int
	Teachers int
	Classes  int
	Rooms    int
	Slots    int
}

type BenchmarkResult struct {
	Solver        string  `csv:"solver"`
	Constraints   string  `csv:"constraints"`
	Test          string  `csv:"test"`
	Courses       int     `csv:"courses"`
	Teachers      int     `csv:"teachers"`
	Classes       int     `csv:"classes"`
	Rooms         int     `csv:"rooms"`
	Slots         int     `csv:"slots"`
	Duration      int64   `csv:"duration_ms"`
	Memory        float32 `csv:"memory_mb"`
	CpuPercentage int64   `csv:"cpu_percentage"`
	Result        string  `csv:"result"`
}

func main() {
	cmdBenchmark := &cobra.Command{
		Use:   "benchmark",
		Short: "run the scheduler over every input file, solver and constraint set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tests := getTests()
			benchmark := make([]*BenchmarkResult, 0, len(tests)*len(solvers)*len(constraintSets))

			for _, test := range tests {
				for _, constraints := range constraintSets {
					for _, solver := range solvers {
						fmt.Printf("Benchmarking test \"%v\" with solver \"%v\" and constraints \"%v\"\n", test.Name, solver, constraints)

						duration, maxMemory, cpuPercentage, result := measure(solver, constraints, test.Name)

						benchmark = append(benchmark, &BenchmarkResult{
							Solver:        solver,
							Constraints:   constraints,
							Test:          test.Name,
							Courses:       test.Courses,
							Teachers:      test.Teachers,
							Classes:       test.Classes,
							Rooms:         test.Rooms,
							Slots:         test.Slots,
							Duration:      duration,
							Memory:        maxMemory,
							CpuPercentage: cpuPercentage,
							Result:        result,
						})
					}
				}
			}

			toCsv(benchmark)
		},
	}
	cmdBenchmark.Flags().StringVar(&executablePath, "bin", executablePath, "scheduler executable, built with: go build -o bin/schedule ./cmd/cli")
	cmdBenchmark.Flags().StringVar(&inputDirectory, "inputs", inputDirectory, "directory holding the course files (.csv or .json)")
	cmdBenchmark.Flags().StringVar(&outFile, "out", outFile, "CSV file the results are written to")
	cmdBenchmark.Flags().StringVar(&configFile, "config", configFile, "configuration file handed to the scheduler")
	cmdBenchmark.Flags().StringVar(&timeout, "timeout", timeout, "solver time budget of every run")
	cmdBenchmark.Flags().StringSliceVar(&solvers, "solvers", solvers, "solvers to benchmark")
	cmdBenchmark.Flags().StringArrayVar(&constraintSets, "constraints", constraintSets, "constraint sets to benchmark, repeat the flag for each set")

	if err := cmdBenchmark.Execute(); err != nil {
		os.Exit(1)
	}
}

// Normalizes every input file to describe the instance
func getTests() []TestMetadata {
	files, err := os.ReadDir(inputDirectory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	normalizer := lo.Must(model.NewNormalizer(cfg.Calendar.HoursPerSlot, nil))

	tests := make([]TestMetadata, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		filename := filepath.Join(inputDirectory, file.Name())
		rows, err := csvio.LoadFile(filename)
		if err != nil {
			log.Fatalf("cannot parse input file: %v", err)
		}
		demand, err := normalizer.Normalize(rows)
		if err != nil {
			log.Fatalf("invalid input file %v: %v", filename, err)
		}

		tests = append(tests, TestMetadata{
			Name:     filename,
			Courses:  len(demand.Courses),
			Teachers: len(demand.Resources(model.TeacherDimension)),
			Classes:  len(demand.Resources(model.ClassDimension)),
			Rooms:    len(demand.Resources(model.RoomDimension)),
			Slots:    demand.TotalSlots(),
		})
	}

	return tests
}

func measure(solver, constraints, testFile string) (duration int64, maxMemory float32, cpuPercentage int64, result string) {
	args := []string{"-v", executablePath, "solve", "--in", testFile, "--solver", solver, "--constraints", constraints, "--timeout", timeout, "--out", os.DevNull}
	if configFile != "" {
		args = append(args, "--config", configFile)
	}
	cmd := exec.Command("/usr/bin/time", args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	result, ok := results[cmd.ProcessState.ExitCode()]
	if !ok {
		log.Fatalf("an error occurred during the execution of \"schedule\" at test \"%v\" using solver \"%v\" and constraints \"%v\": %v\n", testFile, solver, constraints, stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, result
}

func toCsv(benchmark []*BenchmarkResult) {
	file, err := os.Create(outFile)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&benchmark, file); err != nil {
		log.Panicf("cannot write CSV records: %v", err)
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

// Parses "h:mm:ss.cc" or "m:ss.cc" into milliseconds
func parseDuration(durationStr string) int64 {
	parts := strings.Split(strings.TrimSpace(durationStr), ":")
	secondsParts := strings.Split(parts[len(parts)-1], ".")
	seconds := lo.Must(strconv.Atoi(secondsParts[0]))
	hundredthOfSeconds := 0
	if len(secondsParts) == 2 {
		hundredthOfSeconds = lo.Must(strconv.Atoi(secondsParts[1]))
	}

	var minutes, hours int
	switch len(parts) {
	case 3: // h:mm:ss
		hours = lo.Must(strconv.Atoi(parts[0]))
		minutes = lo.Must(strconv.Atoi(parts[1]))
	case 2: // m:ss
		minutes = lo.Must(strconv.Atoi(parts[0]))
	default:
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
}

// Memory is reported in kilobytes
func parseMemoryLine(line string) float32 {
	memoryStr := strings.TrimSpace(strings.Split(line, ":")[1])
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / 1024
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.TrimSpace(strings.Split(line, ":")[1])
	percentageStr = strings.TrimSuffix(percentageStr, "%")
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
