// Package table defines the signal table: its columnar schema, a batching
// writer that appends per-read records to an injected sink, and a reader
// over the resulting Arrow IPC container.
package table

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// Column names of the signal table. Together with their types these are
// the wire contract between this writer and any reader of the container.
const (
	FieldReadID      = "read_id"
	FieldPayload     = "payload"
	FieldSampleCount = "sample_count"
)

var (
	// ErrMissingField reports a schema without one of the required columns.
	ErrMissingField = errors.New("table: schema missing field")

	// ErrWrongType reports a required column present with an incompatible
	// type. No coercion is ever attempted.
	ErrWrongType = errors.New("table: schema field has incorrect type")
)

// FieldLocations holds the resolved column indices of the three required
// columns, so row access never repeats name lookups. Column order in
// storage is not assumed; extra columns are tolerated and ignored.
type FieldLocations struct {
	ReadID      int
	Payload     int
	SampleCount int
}

// NewSchema builds the signal table schema with the caller's key/value
// metadata attached verbatim.
func NewSchema(metadata arrow.Metadata) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: FieldReadID, Type: NewUUIDType()},
		{Name: FieldPayload, Type: arrow.BinaryTypes.LargeBinary},
		{Name: FieldSampleCount, Type: arrow.PrimitiveTypes.Uint32},
	}, &metadata)
}

// ReadSchema validates a candidate schema against the signal table layout
// and returns the resolved column positions. A reader must call this before
// trusting column indices.
func ReadSchema(schema *arrow.Schema) (FieldLocations, error) {
	var locs FieldLocations

	readIDIdx, err := fieldIndex(schema, FieldReadID)
	if err != nil {
		return locs, err
	}
	readIDType := schema.Field(readIDIdx).Type
	ext, ok := readIDType.(arrow.ExtensionType)
	if !ok || ext.ExtensionName() != uuidExtensionName {
		return locs, fmt.Errorf("%w: %q has type %s, want extension %s",
			ErrWrongType, FieldReadID, readIDType, uuidExtensionName)
	}

	payloadIdx, err := fieldIndex(schema, FieldPayload)
	if err != nil {
		return locs, err
	}
	if payloadType := schema.Field(payloadIdx).Type; payloadType.ID() != arrow.LARGE_BINARY {
		return locs, fmt.Errorf("%w: %q has type %s, want large_binary",
			ErrWrongType, FieldPayload, payloadType)
	}

	countIdx, err := fieldIndex(schema, FieldSampleCount)
	if err != nil {
		return locs, err
	}
	if countType := schema.Field(countIdx).Type; countType.ID() != arrow.UINT32 {
		return locs, fmt.Errorf("%w: %q has type %s, want uint32",
			ErrWrongType, FieldSampleCount, countType)
	}

	locs.ReadID = readIDIdx
	locs.Payload = payloadIdx
	locs.SampleCount = countIdx
	return locs, nil
}

func fieldIndex(schema *arrow.Schema, name string) (int, error) {
	indices := schema.FieldIndices(name)
	if len(indices) == 0 {
		return -1, fmt.Errorf("%w: %q", ErrMissingField, name)
	}
	return indices[0], nil
}
