package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/opsboard/opsboard/tools/dashgen/dashboards"
	"github.com/opsboard/opsboard/tools/dashgen/rules"
	"github.com/opsboard/opsboard/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	builder := dashboards.BuildOverview()
	dash, err := builder.Build()
	require.NoError(t, err)

	require.NotNil(t, dash.Uid)
	assert.Equal(t, "opsboard-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Opsboard Overview", *dash.Title)

	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	assert.Len(t, dash.Panels, 4)

	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 13, totalPanels)

	// Every target expression must parse and reference an exported metric.
	data, err := json.Marshal(dash)
	require.NoError(t, err)
	result := validate.DashboardJSON(data, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "opsboard-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "opsboard-recording", group.Name)
	require.Len(t, group.Rules, 5)

	expectedRecords := []string{
		"opsboard:http_requests:rate5m",
		"opsboard:http_errors:rate5m",
		"opsboard:fetch_rows:rate5m",
		"opsboard:fetch_errors:rate5m",
		"opsboard:refresh_failures:rate1h",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.NotEmpty(t, rule.Expr)
		assert.True(t, KnownMetrics[rule.Record], "record %s missing from KnownMetrics", rule.Record)
	}

	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "opsboard-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "opsboard-alerts", group.Name)
	require.Len(t, group.Rules, 6)

	expectedAlerts := []string{
		"OpsboardDown",
		"OpsboardReadinessDown",
		"OpsboardHighErrorRate",
		"OpsboardFetchErrors",
		"OpsboardRefreshFailing",
		"OpsboardSnapshotEmpty",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Expr)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, false))

	dashPath := filepath.Join(dir, "grafana", "data", "opsboard-overview.json")
	dashData, err := os.ReadFile(dashPath)
	require.NoError(t, err)
	assert.Contains(t, string(dashData), `"opsboard-overview"`)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(dashData, &decoded))

	for _, name := range []string{"opsboard-recording-rules.yaml", "opsboard-alerts.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, "prometheus", name))
		require.NoError(t, err)
		assert.Contains(t, string(data), generatedHeader)
		assert.Contains(t, string(data), "monitoring.coreos.com/v1")
	}
}

func TestRunValidateOnlyWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
