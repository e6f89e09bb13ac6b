package main

import (
	"fmt"
	"strings"
)

type Config struct {
	Input     string `name:"input" required:"true" help:"Input path (raw signal stream for convert, signal table for inspect)"`
	Output    string `name:"output" default:"output.pod5" help:"Output signal table path"`
	BatchSize int    `name:"batch-size" default:"1000" help:"Rows buffered per record batch"`
	Workers   int    `name:"workers" default:"8" help:"Concurrent compression workers"`

	Meta []string `name:"meta" help:"Schema metadata as comma-separated key=value pairs"`
	JSON bool     `name:"json" help:"Emit inspect output as JSON lines"`

	LogFilter     []string `name:"log-filter" default:"convert,inspect" help:"Log category filter (comma-separated)"`
	LogInterval   int      `name:"log-interval" default:"100000" help:"Log conversion progress every N reads"`
	MetricsListen string   `name:"metrics-listen" help:"Metrics endpoint address (disabled if empty)"`
	PprofPort     string   `name:"pprof-port" help:"Port for pprof debugging endpoint"`
}

// parseMeta splits key=value metadata pairs into parallel key/value slices.
func parseMeta(pairs []string) ([]string, []string, error) {
	keys := make([]string, 0, len(pairs))
	values := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, nil, fmt.Errorf("invalid metadata pair %q, want key=value", pair)
		}
		keys = append(keys, key)
		values = append(values, value)
	}
	return keys, values, nil
}
