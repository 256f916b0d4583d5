package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/model"
	"github.com/netcompose/netcompose/opt/scenario"
	"github.com/netcompose/netcompose/opt/topo"
)

var (
	composeTopologyPath string // Topology YAML
	composeScenarioPath string // Scenario YAML
	composeLPPath       string // LP output path, "-" for stdout
	composeJSONPath     string // JSON output path
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose a scenario into one shared optimization model",
	Long:  "Load a topology and a scenario, compose every application into one shared linear model, and export it as CPLEX LP text and/or JSON.",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		start := time.Now()
		m, sc, err := buildModel(composeTopologyPath, composeScenarioPath)
		if err != nil {
			logrus.Fatalf("Composition failed: %v", err)
		}
		logrus.Infof("Composed %d applications in %v", len(sc.Apps), time.Since(start).Round(time.Millisecond))
		logrus.Infof("%s", m)

		if composeLPPath == "-" {
			if err := m.WriteLP(os.Stdout); err != nil {
				logrus.Fatalf("LP export failed: %v", err)
			}
		} else if composeLPPath != "" {
			if err := m.ExportLP(composeLPPath); err != nil {
				logrus.Fatalf("LP export failed: %v", err)
			}
		}
		if composeJSONPath != "" {
			if err := m.ExportJSON(composeJSONPath); err != nil {
				logrus.Fatalf("JSON export failed: %v", err)
			}
		}
		if composeLPPath == "" && composeJSONPath == "" {
			logrus.Warnf("No --lp or --json output requested; model discarded")
		}
	},
}

// buildModel loads and validates both input files, compiles the scenario
// against the topology, and composes everything into a fresh linear model.
func buildModel(topoPath, scenPath string) (*model.Model, *scenario.Scenario, error) {
	tspec, err := topo.LoadSpec(topoPath)
	if err != nil {
		return nil, nil, err
	}
	tp, err := tspec.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid topology %s: %w", topoPath, err)
	}

	sspec, err := scenario.LoadSpec(scenPath)
	if err != nil {
		return nil, nil, err
	}
	if err := sspec.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid scenario %s: %w", scenPath, err)
	}
	sc, err := sspec.Build(tp)
	if err != nil {
		return nil, nil, fmt.Errorf("building scenario %s: %w", scenPath, err)
	}

	name := sc.Name
	if name == "" {
		name = tp.Name()
	}
	m := model.New(name, logrus.StandardLogger())
	opts := sc.Options
	opts.Logger = logrus.StandardLogger()
	if err := opt.Compose(sc.Apps, tp, m, opts); err != nil {
		return nil, nil, err
	}
	return m, sc, nil
}

func init() {
	composeCmd.Flags().StringVar(&composeTopologyPath, "topology", "", "Path to topology YAML")
	composeCmd.Flags().StringVar(&composeScenarioPath, "scenario", "", "Path to scenario YAML")
	composeCmd.Flags().StringVar(&composeLPPath, "lp", "", `Write CPLEX LP text to this path ("-" = stdout)`)
	composeCmd.Flags().StringVar(&composeJSONPath, "json", "", "Write the JSON model to this path")
	_ = composeCmd.MarkFlagRequired("topology")
	_ = composeCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(composeCmd)
}
