// Package output renders analysis reports for the console.
package output

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/chainwatch/cascade/pkg/analysis"
)

// PrintReport prints a colorized summary of an analysis report.
func PrintReport(report *analysis.Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Println("Cascade - Propagation Analysis")
	bold.Println("==============================")
	fmt.Printf("Source: %s (max depth %d)\n", report.SourceID, report.MaxDepth)
	fmt.Printf("Propagation paths: %d\n", len(report.PropagationPaths))
	fmt.Printf("Affected nodes: %d\n", len(report.AffectedNodeIDs))
	if report.Truncated {
		yellow.Println("Path enumeration truncated at the safety cap; results are partial")
	}
	if report.Cancelled {
		yellow.Println("Run was cancelled; results are partial")
	}
	fmt.Println()

	m := report.Metrics
	cyan.Println("METRICS")
	fmt.Printf("  total paths:      %d\n", m.TotalPaths)
	fmt.Printf("  max fan-out:      %d\n", m.MaxFanOut)
	fmt.Printf("  avg path length:  %.2f\n", m.AveragePathLength)
	fmt.Printf("  max path length:  %d\n", m.MaxPathLength)
	fmt.Println()

	if report.Structural != nil && (len(report.Structural.Cycles) > 0 || len(report.Structural.Hubs) > 0) {
		red.Println("STRUCTURAL FINDINGS")
		for _, c := range report.Structural.Cycles {
			yellow.Printf("  cycle: %v\n", c.NodeIDs)
		}
		for _, h := range report.Structural.Hubs {
			yellow.Printf("  hub: %s (fan-out %d, fan-in %d)\n", h.NodeID, h.FanOut, h.FanIn)
		}
		fmt.Println()
	}

	if len(report.Mitigations) == 0 {
		green.Println("No mitigations needed - nothing is affected")
		return
	}

	cyan.Println("RANKED MITIGATIONS")
	for i, mit := range report.Mitigations {
		scoreColor := green
		if mit.RiskReduction >= 0.5 {
			scoreColor = red
		} else if mit.RiskReduction >= 0.2 {
			scoreColor = yellow
		}

		fmt.Printf("%3d. ", i+1)
		scoreColor.Printf("%.1f%% ", mit.RiskReduction*100)
		fmt.Printf("[%s/%s] %s\n", mit.ActionType, mit.ImplementationComplexity, mit.Description)
		fmt.Printf("     eliminates %d path(s)\n", mit.PathsEliminated)
	}
}
