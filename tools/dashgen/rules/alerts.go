package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// opsboard operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "opsboard-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "opsboard-alerts",
					Rules: []Rule{
						{
							Alert: "OpsboardDown",
							Expr:  `absent(up{job="opsboard"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Opsboard is down",
								"description": "The opsboard job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "OpsboardReadinessDown",
							Expr:  `opsboard_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Opsboard readiness check is failing",
								"description": "No dashboard snapshot has loaded for more than 2 minutes; the API is serving 503s.",
							},
						},
						{
							Alert: "OpsboardHighErrorRate",
							Expr:  `opsboard:http_errors:rate5m / opsboard:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on opsboard",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "OpsboardFetchErrors",
							Expr:  `opsboard:fetch_errors:rate5m > 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Source fetch errors detected",
								"description": "Row source page fetches have been failing for more than 5 minutes.",
							},
						},
						{
							Alert: "OpsboardRefreshFailing",
							Expr:  `opsboard:refresh_failures:rate1h > 0`,
							For:   "1h",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Snapshot refresh is failing",
								"description": "A dashboard snapshot has failed every refresh attempt for the last hour and is serving stale data.",
							},
						},
						{
							Alert: "OpsboardSnapshotEmpty",
							Expr:  `opsboard_snapshot_rows == 0`,
							For:   "30m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "A dashboard snapshot holds no rows",
								"description": "A dashboard snapshot has been empty for 30 minutes. The source may be returning no data for its table.",
							},
						},
					},
				},
			},
		},
	}
}
