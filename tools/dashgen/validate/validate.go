// Package validate checks generated Grafana and Prometheus artifacts: every
// PromQL expression must parse, and every metric it selects must be one the
// service actually exports.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation findings. Errors fail the artifact; warnings are
// advisory.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation produced no errors.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// histogram series carry these suffixes over the base metric name.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

func baseMetric(name string) string {
	for _, suffix := range histogramSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// Expr validates a single PromQL expression against the known metric set.
func Expr(expr string, known map[string]bool) *Result {
	res := &Result{}
	res.checkExpr("", expr, known)
	return res
}

func (r *Result) checkExpr(context, expr string, known map[string]bool) {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		r.errorf("%s: invalid PromQL %q: %v", context, expr, err)
		return
	}

	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		name := vs.Name
		if !known[name] && !known[baseMetric(name)] {
			r.errorf("%s: unknown metric %q in %q", context, name, expr)
		}
		return nil
	})
}

// DashboardJSON validates every PromQL target expression found in a marshaled
// Grafana dashboard. It walks the raw JSON rather than the SDK types so it
// sees exactly what Grafana will.
func DashboardJSON(data []byte, known map[string]bool) Result {
	res := Result{}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		res.errorf("dashboard: invalid JSON: %v", err)
		return res
	}

	exprs := collectExprs(doc, nil)
	if len(exprs) == 0 {
		res.Warnings = append(res.Warnings, "dashboard: no PromQL expressions found")
	}
	for _, e := range exprs {
		res.checkExpr("dashboard", e, known)
	}
	return res
}

// collectExprs gathers every string-valued "expr" field in the document.
func collectExprs(node any, acc []string) []string {
	switch v := node.(type) {
	case map[string]any:
		for key, val := range v {
			if key == "expr" {
				if s, ok := val.(string); ok && s != "" {
					acc = append(acc, s)
					continue
				}
			}
			acc = collectExprs(val, acc)
		}
	case []any:
		for _, item := range v {
			acc = collectExprs(item, acc)
		}
	}
	return acc
}

// RuleExprs validates a list of named rule expressions, as produced by
// recording or alerting rule groups.
func RuleExprs(exprs map[string]string, known map[string]bool) Result {
	res := Result{}
	for name, expr := range exprs {
		res.checkExpr("rule "+name, expr, known)
	}
	return res
}
