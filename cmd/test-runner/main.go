// Package main - test-runner
// Executable to run the headless balance scenarios against the built-in catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/content"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
	"github.com/MRamiBalles/ContentCollapse/test"
)

func main() {
	fmt.Println("CONTENT COLLAPSE - BALANCE SCENARIOS")
	fmt.Println(strings.Repeat("=", 60))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	suite := test.NewSuite(content.Default(), logger.NewLogger())
	results := suite.Run(ctx, test.Scenarios())

	passed := 0
	failed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	for _, r := range results {
		mark := "PASS"
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Printf("   %s  %-50s %8v\n", mark, r.ScenarioName, r.SimTime)
	}
	fmt.Printf("\n   Passed: %d\n", passed)
	fmt.Printf("   Failed: %d\n", failed)

	if failed > 0 {
		fmt.Println("\nThe economy needs retuning.")
		os.Exit(1)
	}
	fmt.Println("\nThe economy is ready to ship.")
}
