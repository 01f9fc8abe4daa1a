// ABOUTME: Command-line runner for the topic-detection benchmark
// ABOUTME: Scores keyword and @mention resolution against labeled queries and writes JSON results
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/harper/nutricoach/benchmarks/topics"
	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/models"
)

func main() {
	casesPath := flag.String("cases", "", "YAML file of labeled cases (default: built-in set)")
	keywordsPath := flag.String("keywords", "", "YAML keyword map (default: $NUTRICOACH_KEYWORDS_FILE or built-in)")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	minF1 := flag.Float64("min-f1", 0.8, "Micro-averaged F1 required to pass")
	verbose := flag.Bool("verbose", false, "Log every mismatched case")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	_ = godotenv.Load()
	if *keywordsPath == "" {
		*keywordsPath = os.Getenv("NUTRICOACH_KEYWORDS_FILE")
	}

	var keywords core.KeywordMap
	if *keywordsPath != "" {
		keywords, err = core.LoadKeywordMap(*keywordsPath)
		if err != nil {
			logger.Fatal("failed to load keyword map", zap.Error(err))
		}
	}

	cases := topics.DefaultCases()
	if *casesPath != "" {
		cases, err = topics.LoadCases(*casesPath)
		if err != nil {
			logger.Fatal("failed to load cases", zap.Error(err))
		}
	}

	fmt.Println("========================================")
	fmt.Println("NutriCoach Topic Detection Benchmark")
	fmt.Println("========================================")
	fmt.Println()

	report, err := topics.NewRunner(keywords, *minF1, logger).Run(cases)
	if err != nil {
		logger.Fatal("benchmark failed", zap.Error(err))
	}

	for _, c := range report.Cases {
		mark := "✓"
		if !c.Exact {
			mark = "✗"
		}
		fmt.Printf("%s %-20s want [%s] got [%s]\n", mark, c.ID,
			strings.Join(models.TopicStrings(c.Expected), ","),
			strings.Join(models.TopicStrings(c.Got), ","))
	}

	fmt.Println("\n========================================")
	fmt.Println("PER TOPIC")
	fmt.Println("========================================")

	names := make([]string, 0, len(report.PerTopic))
	for name := range report.PerTopic {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := report.PerTopic[name]
		fmt.Printf("  %-10s precision %.2f  recall %.2f  f1 %.2f\n", name, s.Precision, s.Recall, s.F1)
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Cases: %d\n", report.TotalCases)
	fmt.Printf("Exact Match: %.2f\n", report.ExactMatch)
	fmt.Printf("Micro F1:    %.2f (min %.2f)\n", report.Micro.F1, report.MinF1)
	fmt.Printf("Status:      %s\n", report.Status)
	fmt.Println("========================================")

	if err := topics.ExportResults(report, *outputPath); err != nil {
		logger.Fatal("failed to export results", zap.Error(err))
	}
	fmt.Printf("✓ Results exported to: %s\n", *outputPath)

	if report.Status != topics.StatusPass {
		os.Exit(1)
	}
}
