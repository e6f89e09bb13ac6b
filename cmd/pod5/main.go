package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	jsoniter "github.com/json-iterator/go"

	"github.com/sashajenner/pod5-file-format/config"
	"github.com/sashajenner/pod5-file-format/logger"
	"github.com/sashajenner/pod5-file-format/signal"
	"github.com/sashajenner/pod5-file-format/table"
)

var Version = "dev"

var logCategories = []string{"convert", "inspect", "error", "warning"}

func main() {
	config.CheckVersion(Version)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: pod5 <convert|inspect> [options]")
		os.Exit(2)
	}
	command := os.Args[1]

	var cfg Config
	if err := config.Load(&cfg, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "pod5 %s: %v\n", command, err)
		os.Exit(2)
	}

	logger.RegisterCategories(logCategories...)
	logger.SetCategoryFilter(cfg.LogFilter)

	if cfg.PprofPort != "" {
		go func() {
			if err := http.ListenAndServe("localhost:"+cfg.PprofPort, nil); err != nil {
				logger.Error("pprof endpoint failed: %v", err)
			}
		}()
	}
	if cfg.MetricsListen != "" {
		serveMetrics(cfg.MetricsListen)
	}

	var err error
	switch command {
	case "convert":
		err = runConvert(&cfg)
	case "inspect":
		err = runInspect(&cfg, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "pod5: unknown command %q\n", command)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("%s: %v", command, err)
	}
}

// runConvert reads the raw signal stream, compresses reads on a worker pool
// and serializes the results into a single signal table writer. Only the
// compression runs concurrently; the writer mutation stays single-threaded.
func runConvert(cfg *Config) error {
	in, err := os.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	keys, values, err := parseMeta(cfg.Meta)
	if err != nil {
		return err
	}
	metadata := arrow.NewMetadata(keys, values)

	writer, err := table.NewFileWriter(out, metadata, table.WithBatchSize(cfg.BatchSize))
	if err != nil {
		return err
	}

	codec := signal.NewCodec()

	type encoded struct {
		read    rawRead
		payload []byte
		err     error
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	// Order-preserving fan-out: each read gets a result slot queued in
	// input order, compression fills the slots concurrently.
	results := make(chan chan encoded, workers)
	go func() {
		defer close(results)
		reader := newRawReader(bufio.NewReaderSize(in, 1<<20))
		gate := make(chan struct{}, workers)
		for {
			read, err := reader.Next()
			if err == io.EOF {
				return
			}
			slot := make(chan encoded, 1)
			results <- slot
			if err != nil {
				slot <- encoded{err: err}
				return
			}
			gate <- struct{}{}
			go func(read rawRead) {
				defer func() { <-gate }()
				payload, err := codec.Compress(read.samples)
				slot <- encoded{read: read, payload: payload, err: err}
			}(read)
		}
	}()

	var reads int64
	for slot := range results {
		e := <-slot
		if e.err != nil {
			return e.err
		}

		if _, err := writer.AddEncodedRead(e.read.readID, e.payload, uint32(len(e.read.samples))); err != nil {
			return err
		}

		readsConverted.Inc()
		samplesConverted.Add(float64(len(e.read.samples)))
		bytesIn.Add(float64(2 * len(e.read.samples)))
		bytesOut.Add(float64(len(e.payload)))

		reads++
		if cfg.LogInterval > 0 && reads%int64(cfg.LogInterval) == 0 {
			logger.Printf("convert", "%s reads written", logFormatCount(reads))
		}
	}

	if err := writer.Close(); err != nil {
		return err
	}
	logger.Printf("convert", "wrote %d reads to %s", reads, cfg.Output)
	return nil
}

type inspectRow struct {
	ReadID       string `json:"read_id"`
	SampleCount  uint32 `json:"sample_count"`
	PayloadBytes int    `json:"payload_bytes"`
}

func runInspect(cfg *Config, out io.Writer) error {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	reader, err := table.NewReader(f)
	if err != nil {
		return err
	}
	defer reader.Close()

	w := bufio.NewWriter(out)
	defer w.Flush()

	metadata := reader.Metadata()
	if !cfg.JSON {
		for i, key := range metadata.Keys() {
			fmt.Fprintf(w, "# %s = %s\n", key, metadata.Values()[i])
		}
		fmt.Fprintf(w, "# reads: %d, batches: %d\n", reader.NumReads(), reader.NumBatches())
	}

	json := jsoniter.ConfigCompatibleWithStandardLibrary
	for row := int64(0); row < reader.NumReads(); row++ {
		rec, err := reader.Read(row)
		if err != nil {
			return err
		}

		if cfg.JSON {
			line, err := json.Marshal(inspectRow{
				ReadID:       rec.ReadID.String(),
				SampleCount:  rec.SampleCount,
				PayloadBytes: rec.PayloadBytes,
			})
			if err != nil {
				return err
			}
			w.Write(line)
			w.WriteByte('\n')
		} else {
			fmt.Fprintf(w, "%s\t%d\t%d\n", rec.ReadID, rec.SampleCount, rec.PayloadBytes)
		}
	}
	return nil
}

func logFormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
