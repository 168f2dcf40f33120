// Package main implements a mock row store for local development. It speaks
// the PostgREST range protocol over JSON fixtures so opsboard can be run
// against realistic paged data without a hosted Postgres platform.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type row = map[string]any

// tables names the views opsboard pulls and the fixture file backing each.
var tables = []string{
	"supply_orders",
	"crm_pipeline",
	"campaign_results",
	"network_flows",
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureDir := flag.String("fixtures", "tools/mock-server/testdata", "directory holding <table>.json fixtures")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store, err := loadFixtures(*fixtureDir)
	if err != nil {
		logger.Error("failed to load fixtures", "dir", *fixtureDir, "error", err)
		os.Exit(1)
	}
	for table, rows := range store {
		logger.Info("loaded fixture", "table", table, "rows", len(rows))
	}

	mux := http.NewServeMux()
	for _, table := range tables {
		mux.HandleFunc("GET /rest/v1/"+table, tableHandler(logger, table, store[table]))
	}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock row store", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixtures(dir string) (map[string][]row, error) {
	store := make(map[string][]row, len(tables))
	for _, table := range tables {
		path := filepath.Join(dir, table+".json")
		data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading fixture %s: %w", path, err)
		}
		var rows []row
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
		}
		store[table] = rows
	}
	return store, nil
}

func tableHandler(logger *slog.Logger, table string, rows []row) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") == "" {
			writeError(w, http.StatusUnauthorized, "missing apikey header")
			return
		}

		start, end, err := parseRange(r.Header.Get("Range"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		page := slicePage(rows, start, end)
		logger.Debug("serving page", "table", table, "start", start, "end", end, "rows", len(page))

		w.Header().Set("Content-Type", "application/json")
		last := start + len(page) - 1
		if len(page) == 0 {
			last = start
		}
		w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%d", start, last, len(rows)))
		w.WriteHeader(http.StatusPartialContent)
		if err := json.NewEncoder(w).Encode(page); err != nil {
			logger.Error("failed to encode page", "table", table, "error", err)
		}
	}
}

// parseRange parses an inclusive "start-end" items range. An absent header
// means the whole table.
func parseRange(header string) (start, end int, err error) {
	if header == "" {
		return 0, -1, nil
	}
	parts := strings.SplitN(header, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed range %q", header)
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed range start %q", parts[0])
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed range end %q", parts[1])
	}
	if start < 0 || end < start {
		return 0, 0, fmt.Errorf("invalid range %d-%d", start, end)
	}
	return start, end, nil
}

func slicePage(rows []row, start, end int) []row {
	if start >= len(rows) {
		return []row{}
	}
	if end < 0 || end >= len(rows) {
		end = len(rows) - 1
	}
	return rows[start : end+1]
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}
