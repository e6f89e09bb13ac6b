package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sashajenner/pod5-file-format/table"
)

func TestRawStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	want := []rawRead{
		{readID: uuid.New(), samples: []int16{0, 1, 1, 0, -1, -32768, 32767}},
		{readID: uuid.New(), samples: []int16{}},
		{readID: uuid.New(), samples: make([]int16, 1000)},
	}
	for _, read := range want {
		if err := writeRawRead(&buf, read.readID, read.samples); err != nil {
			t.Fatalf("writeRawRead failed: %v", err)
		}
	}

	reader := newRawReader(&buf)
	for i, wantRead := range want {
		got, err := reader.Next()
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		if got.readID != wantRead.readID {
			t.Fatalf("read %d: id %s, want %s", i, got.readID, wantRead.readID)
		}
		if len(got.samples) != len(wantRead.samples) {
			t.Fatalf("read %d: %d samples, want %d", i, len(got.samples), len(wantRead.samples))
		}
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestRawStreamTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRawRead(&buf, uuid.New(), []int16{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()[:buf.Len()-3]

	reader := newRawReader(bytes.NewReader(data))
	if _, err := reader.Next(); err == nil {
		t.Fatal("expected error for truncated record")
	}
}

func TestParseMeta(t *testing.T) {
	keys, values, err := parseMeta([]string{"format_version=3", "acquisition_id=abc"})
	if err != nil {
		t.Fatalf("parseMeta failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "format_version" || values[1] != "abc" {
		t.Fatalf("unexpected metadata: %v %v", keys, values)
	}

	if _, _, err := parseMeta([]string{"no-equals-sign"}); err == nil {
		t.Fatal("expected error for malformed pair")
	}
}

func TestConvertInspectEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "reads.sig")
	output := filepath.Join(dir, "reads.pod5")

	var raw bytes.Buffer
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
		samples := make([]int16, 100+i*37)
		for j := range samples {
			samples[j] = int16(j - i)
		}
		if err := writeRawRead(&raw, ids[i], samples); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(input, raw.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{
		Input:     input,
		Output:    output,
		BatchSize: 2,
		Workers:   3,
		Meta:      []string{"format_version=3"},
	}
	if err := runConvert(cfg); err != nil {
		t.Fatalf("runConvert failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	reader, err := table.NewReader(f)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if reader.NumReads() != 5 {
		t.Fatalf("NumReads = %d, want 5", reader.NumReads())
	}
	for i := range ids {
		rec, err := reader.Read(int64(i))
		if err != nil {
			t.Fatalf("Read(%d) failed: %v", i, err)
		}
		if rec.ReadID != ids[i] {
			t.Fatalf("row %d: id %s, want %s", i, rec.ReadID, ids[i])
		}
		if int(rec.SampleCount) != 100+i*37 {
			t.Fatalf("row %d: sample_count %d, want %d", i, rec.SampleCount, 100+i*37)
		}
	}

	var plain bytes.Buffer
	if err := runInspect(&Config{Input: output}, &plain); err != nil {
		t.Fatalf("runInspect failed: %v", err)
	}
	if !strings.Contains(plain.String(), "format_version = 3") {
		t.Fatalf("inspect output missing metadata: %q", plain.String())
	}

	var jsonOut bytes.Buffer
	if err := runInspect(&Config{Input: output, JSON: true}, &jsonOut); err != nil {
		t.Fatalf("runInspect --json failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(jsonOut.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("inspect --json emitted %d lines, want 5", len(lines))
	}
	if !strings.Contains(lines[0], `"sample_count":100`) {
		t.Fatalf("unexpected json line: %q", lines[0])
	}
}
