package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sashajenner/pod5-file-format/logger"
)

var (
	readsConverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pod5_convert_reads_total",
		Help: "Reads written to the signal table",
	})
	samplesConverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pod5_convert_samples_total",
		Help: "Samples written to the signal table",
	})
	bytesIn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pod5_convert_raw_bytes_total",
		Help: "Raw sample bytes consumed",
	})
	bytesOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pod5_convert_payload_bytes_total",
		Help: "Compressed payload bytes produced",
	})
)

func serveMetrics(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(listen, mux); err != nil {
			logger.Error("metrics endpoint failed: %v", err)
		}
	}()
	logger.Printf("convert", "metrics endpoint on %s", listen)
}
