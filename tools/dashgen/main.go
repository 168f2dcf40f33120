// Command dashgen generates the Grafana overview dashboard and Prometheus
// rule files for opsboard, validating every PromQL expression against the
// metrics the service exports.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opsboard/opsboard/tools/dashgen/dashboards"
	"github.com/opsboard/opsboard/tools/dashgen/rules"
	"github.com/opsboard/opsboard/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by tools/dashgen. DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	dashJSON, err := generateDashboard()
	if err != nil {
		return err
	}

	recordingYAML, alertsYAML, err := generateRules()
	if err != nil {
		return err
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	if cfg.DashboardEnabled {
		path := filepath.Join(cfg.OutputDir, "grafana", "data", "opsboard-overview.json")
		if err := writeFile(path, dashJSON); err != nil {
			return err
		}
	}

	if cfg.RulesEnabled {
		promDir := filepath.Join(cfg.OutputDir, "prometheus")
		if err := writeFile(filepath.Join(promDir, "opsboard-recording-rules.yaml"), recordingYAML); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(promDir, "opsboard-alerts.yaml"), alertsYAML); err != nil {
			return err
		}
	}

	return nil
}

func generateDashboard() ([]byte, error) {
	dash, err := dashboards.BuildOverview().Build()
	if err != nil {
		return nil, fmt.Errorf("build overview dashboard: %w", err)
	}

	data, err := json.MarshalIndent(dash, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal overview dashboard: %w", err)
	}
	data = append(data, '\n')

	if res := validate.DashboardJSON(data, KnownMetrics); !res.Ok() {
		return nil, fmt.Errorf("overview dashboard validation failed: %v", res.Errors)
	}
	return data, nil
}

func generateRules() (recording, alerts []byte, err error) {
	recordingCR := rules.RecordingRules()
	alertsCR := rules.AlertRules()

	exprs := map[string]string{}
	for _, group := range recordingCR.Spec.Groups {
		for _, rule := range group.Rules {
			exprs[rule.Record] = rule.Expr
		}
	}
	for _, group := range alertsCR.Spec.Groups {
		for _, rule := range group.Rules {
			exprs[rule.Alert] = rule.Expr
		}
	}
	if res := validate.RuleExprs(exprs, KnownMetrics); !res.Ok() {
		return nil, nil, fmt.Errorf("rule validation failed: %v", res.Errors)
	}

	recording, err = marshalRule(recordingCR)
	if err != nil {
		return nil, nil, err
	}
	alerts, err = marshalRule(alertsCR)
	if err != nil {
		return nil, nil, err
	}
	return recording, alerts, nil
}

func marshalRule(cr rules.PrometheusRule) ([]byte, error) {
	data, err := yaml.Marshal(cr)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", cr.Metadata.Name, err)
	}
	return append([]byte(generatedHeader), data...), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
