package table

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/sashajenner/pod5-file-format/signal"
)

var (
	// ErrWriterClosed reports a mutation attempted after Close. This is a
	// programming-contract violation and must not be retried.
	ErrWriterClosed = errors.New("table: writer is closed")

	// ErrEncodingFailed reports a codec failure while compressing a read.
	// The record is not appended and the writer remains usable.
	ErrEncodingFailed = errors.New("table: encoding read failed")

	// ErrSink reports the sink rejecting a batch. Buffered rows are kept,
	// so Flush may be retried without data loss.
	ErrSink = errors.New("table: sink rejected batch")
)

// BatchSink accepts immutable batches matching the writer's schema and
// appends them to persistent storage, in the order handed over. After Close
// no further batches may be appended. Failures are recoverable errors, not
// corruption of previously accepted batches.
type BatchSink interface {
	WriteBatch(batch arrow.RecordBatch) error
	Close() error
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBatchSize sets a row threshold at which AddRead flushes the buffered
// batch automatically. Zero (the default) disables threshold flushing, so
// batches are emitted only by Flush and Close. Flush granularity is a
// memory/performance knob only; it is never observable in row numbering.
func WithBatchSize(rows int) WriterOption {
	return func(w *Writer) { w.batchSize = rows }
}

// WithAllocator sets the allocator used to build batches.
func WithAllocator(mem memory.Allocator) WriterOption {
	return func(w *Writer) { w.mem = mem }
}

// WithCodec sets the codec used to compress sample buffers.
func WithCodec(codec *signal.Codec) WriterOption {
	return func(w *Writer) { w.codec = codec }
}

type pendingRead struct {
	readID  uuid.UUID
	payload []byte
	samples uint32
}

// Writer accumulates encoded per-read records and emits them to a sink as
// batches. It is not safe for concurrent mutation: AddRead, Flush and Close
// must be serialized by the caller. Compression may run concurrently
// outside the writer; only the append must be single-threaded.
type Writer struct {
	schema *arrow.Schema
	locs   FieldLocations
	sink   BatchSink
	codec  *signal.Codec
	mem    memory.Allocator

	batchSize int
	pending   []pendingRead

	flushedRows int64
	closed      bool
}

// NewWriter binds a writer to one sink and one schema. The schema is
// validated once, up front.
func NewWriter(sink BatchSink, schema *arrow.Schema, opts ...WriterOption) (*Writer, error) {
	locs, err := ReadSchema(schema)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		schema: schema,
		locs:   locs,
		sink:   sink,
		codec:  signal.NewCodec(),
		mem:    memory.NewGoAllocator(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// NewFileWriter builds the signal table schema with the given metadata and
// writes batches to out as an Arrow IPC file.
func NewFileWriter(out io.Writer, metadata arrow.Metadata, opts ...WriterOption) (*Writer, error) {
	schema := NewSchema(metadata)
	fw, err := ipc.NewFileWriter(out, ipc.WithSchema(schema), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("open ipc writer: %w", err)
	}
	return NewWriter(&ipcSink{writer: fw}, schema, opts...)
}

// AddRead compresses samples and appends one record to the current batch.
// It returns the row's permanent index in the final output, stable across
// flush boundaries.
func (w *Writer) AddRead(readID uuid.UUID, samples []int16) (int64, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}

	payload, err := w.codec.Compress(samples)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %w", ErrEncodingFailed, readID, err)
	}
	return w.AddEncodedRead(readID, payload, uint32(len(samples)))
}

// AddEncodedRead appends a record whose payload was already compressed by
// the codec, for pipelines that compress reads concurrently and serialize
// the results into a single writer. sampleCount must equal the length of
// the sample buffer that produced payload.
func (w *Writer) AddEncodedRead(readID uuid.UUID, payload []byte, sampleCount uint32) (int64, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}

	w.pending = append(w.pending, pendingRead{
		readID:  readID,
		payload: payload,
		samples: sampleCount,
	})
	row := w.flushedRows + int64(len(w.pending)) - 1

	if w.batchSize > 0 && len(w.pending) >= w.batchSize {
		if err := w.Flush(); err != nil {
			return row, err
		}
	}
	return row, nil
}

// Flush emits the buffered rows as one batch. A flush with no buffered rows
// is a no-op. On sink failure the buffer is kept intact so the caller may
// retry.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(w.pending) == 0 {
		return nil
	}

	batch := w.buildBatch()
	defer batch.Release()

	if err := w.sink.WriteBatch(batch); err != nil {
		return fmt.Errorf("%w: %v", ErrSink, err)
	}

	w.flushedRows += int64(len(w.pending))
	w.pending = w.pending[:0]
	return nil
}

// Close flushes pending rows, signals end-of-stream to the sink and
// permanently closes the writer. Calls after the first succeed as no-ops.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}

	w.closed = true
	w.pending = nil
	if err := w.sink.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrSink, err)
	}
	return nil
}

// buildBatch materializes the buffered rows into an immutable batch in
// schema column order.
func (w *Writer) buildBatch() arrow.RecordBatch {
	builder := array.NewRecordBuilder(w.mem, w.schema)
	defer builder.Release()

	readIDBuilder := builder.Field(w.locs.ReadID).(*array.ExtensionBuilder).
		StorageBuilder().(*array.FixedSizeBinaryBuilder)
	payloadBuilder := builder.Field(w.locs.Payload).(*array.BinaryBuilder)
	countBuilder := builder.Field(w.locs.SampleCount).(*array.Uint32Builder)

	for _, read := range w.pending {
		readIDBuilder.Append(read.readID[:])
		payloadBuilder.Append(read.payload)
		countBuilder.Append(read.samples)
	}

	return builder.NewRecord()
}

// ipcSink adapts an Arrow IPC file writer to the BatchSink contract.
type ipcSink struct {
	writer *ipc.FileWriter
}

func (s *ipcSink) WriteBatch(batch arrow.RecordBatch) error {
	return s.writer.Write(batch)
}

func (s *ipcSink) Close() error {
	return s.writer.Close()
}
