package cmd

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netcompose/netcompose/opt/scenario"
	"github.com/netcompose/netcompose/opt/topo"
)

var (
	inspectTopologyPath string // Topology YAML
	inspectScenarioPath string // Optional scenario YAML
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Validate and summarize topology and scenario files",
	Long:  "Load a topology (and optionally a scenario), validate them, and print a summary to stdout without composing a model.",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		tspec, err := topo.LoadSpec(inspectTopologyPath)
		if err != nil {
			logrus.Fatalf("Topology load failed: %v", err)
		}
		tp, err := tspec.Build()
		if err != nil {
			logrus.Fatalf("Invalid topology %s: %v", inspectTopologyPath, err)
		}
		printTopologySummary(tp)

		if inspectScenarioPath == "" {
			return
		}
		sspec, err := scenario.LoadSpec(inspectScenarioPath)
		if err != nil {
			logrus.Fatalf("Scenario load failed: %v", err)
		}
		if err := sspec.Validate(); err != nil {
			logrus.Fatalf("Invalid scenario %s: %v", inspectScenarioPath, err)
		}
		sc, err := sspec.Build(tp)
		if err != nil {
			logrus.Fatalf("Scenario build failed: %v", err)
		}
		printScenarioSummary(sc)
	},
}

// printTopologySummary writes a human-readable topology report to stdout.
func printTopologySummary(tp *topo.Topology) {
	fmt.Printf("topology %q: %d nodes, %d links\n", tp.Name(), len(tp.Nodes()), len(tp.Links()))
	counts := resourceElementCounts(tp)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  resource %q advertised by %d elements\n", name, counts[name])
	}
}

// resourceElementCounts tallies how many elements advertise each resource.
func resourceElementCounts(tp *topo.Topology) map[string]int {
	counts := make(map[string]int)
	for _, id := range tp.Nodes() {
		for name := range tp.NodeResources(id) {
			counts[name]++
		}
	}
	for _, l := range tp.Links() {
		for name := range tp.LinkResources(l) {
			counts[name]++
		}
	}
	return counts
}

// printScenarioSummary writes a human-readable scenario report to stdout.
func printScenarioSummary(sc *scenario.Scenario) {
	fmt.Printf("scenario %q: %d applications\n", sc.Name, len(sc.Apps))
	for _, app := range sc.Apps {
		fmt.Printf("  %s: objective %s, %d classes, %d candidate paths, total volume %g\n",
			app.Name, app.Objective.Kind, app.PPTC.NumClasses(), app.PPTC.NumPaths(), app.Volume())
	}
}

func init() {
	inspectCmd.Flags().StringVar(&inspectTopologyPath, "topology", "", "Path to topology YAML")
	inspectCmd.Flags().StringVar(&inspectScenarioPath, "scenario", "", "Path to scenario YAML (optional)")
	_ = inspectCmd.MarkFlagRequired("topology")

	rootCmd.AddCommand(inspectCmd)
}
