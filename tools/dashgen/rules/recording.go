package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "opsboard-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "opsboard-recording",
					Rules: []Rule{
						{
							Record: "opsboard:http_requests:rate5m",
							Expr:   `sum(rate(opsboard_http_requests_total[5m]))`,
						},
						{
							Record: "opsboard:http_errors:rate5m",
							Expr:   `sum(rate(opsboard_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "opsboard:fetch_rows:rate5m",
							Expr:   `rate(opsboard_fetch_rows_total[5m])`,
						},
						{
							Record: "opsboard:fetch_errors:rate5m",
							Expr:   `rate(opsboard_fetch_errors_total[5m])`,
						},
						{
							Record: "opsboard:refresh_failures:rate1h",
							Expr:   `sum(increase(opsboard_snapshot_refresh_total{outcome="error"}[1h])) by (dashboard)`,
						},
					},
				},
			},
		},
	}
}
