package table

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/sashajenner/pod5-file-format/signal"
)

// ReadRecord is one decoded row of the signal table.
type ReadRecord struct {
	ReadID      uuid.UUID
	Samples     []int16
	SampleCount uint32

	// PayloadBytes is the stored (compressed) payload size.
	PayloadBytes int
}

// Reader reads rows back from an Arrow IPC signal table file. The schema is
// validated against the signal table layout before any column access.
type Reader struct {
	file  *ipc.FileReader
	locs  FieldLocations
	codec *signal.Codec

	// batchStarts[i] is the global row index of the first row in batch i;
	// the final element is the total row count.
	batchStarts []int64
}

// NewReader opens a signal table from in.
func NewReader(in ipc.ReadAtSeeker, opts ...ReaderOption) (*Reader, error) {
	file, err := ipc.NewFileReader(in, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("open ipc reader: %w", err)
	}

	locs, err := ReadSchema(file.Schema())
	if err != nil {
		file.Close()
		return nil, err
	}

	starts := make([]int64, 0, file.NumRecords()+1)
	var total int64
	for i := 0; i < file.NumRecords(); i++ {
		batch, err := file.RecordAt(i)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("read batch %d: %w", i, err)
		}
		starts = append(starts, total)
		total += batch.NumRows()
		batch.Release()
	}
	starts = append(starts, total)

	r := &Reader{
		file:        file,
		locs:        locs,
		codec:       signal.NewCodec(),
		batchStarts: starts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithReaderCodec sets the codec used to decompress payloads.
func WithReaderCodec(codec *signal.Codec) ReaderOption {
	return func(r *Reader) { r.codec = codec }
}

// NumReads reports the total row count across all batches.
func (r *Reader) NumReads() int64 {
	return r.batchStarts[len(r.batchStarts)-1]
}

// NumBatches reports how many batches the file holds.
func (r *Reader) NumBatches() int {
	return r.file.NumRecords()
}

// Metadata returns the schema key/value metadata, verbatim as written.
func (r *Reader) Metadata() arrow.Metadata {
	return r.file.Schema().Metadata()
}

// Read resolves the batch containing row, decompresses its payload and
// returns the decoded record.
func (r *Reader) Read(row int64) (ReadRecord, error) {
	var rec ReadRecord
	if row < 0 || row >= r.NumReads() {
		return rec, fmt.Errorf("row %d out of range [0, %d)", row, r.NumReads())
	}

	batchIdx := 0
	for r.batchStarts[batchIdx+1] <= row {
		batchIdx++
	}
	offset := int(row - r.batchStarts[batchIdx])

	batch, err := r.file.RecordAt(batchIdx)
	if err != nil {
		return rec, fmt.Errorf("read batch %d: %w", batchIdx, err)
	}
	defer batch.Release()

	readIDs := batch.Column(r.locs.ReadID).(array.ExtensionArray).
		Storage().(*array.FixedSizeBinary)
	payloads := batch.Column(r.locs.Payload).(*array.LargeBinary)
	counts := batch.Column(r.locs.SampleCount).(*array.Uint32)

	readID, err := uuid.FromBytes(readIDs.Value(offset))
	if err != nil {
		return rec, fmt.Errorf("row %d: %w", row, err)
	}
	count := counts.Value(offset)
	payload := payloads.Value(offset)

	samples, err := r.codec.Decompress(payload, int(count))
	if err != nil {
		return rec, fmt.Errorf("row %d: %w", row, err)
	}

	rec.ReadID = readID
	rec.Samples = samples
	rec.SampleCount = count
	rec.PayloadBytes = len(payload)
	return rec, nil
}

// Close releases the underlying file reader.
func (r *Reader) Close() error {
	return r.file.Close()
}
