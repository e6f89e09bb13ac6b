package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// The raw signal stream is a sequence of little-endian records, one per
// read: a 16-byte read id, a uint32 sample count, then count int16 samples.

type rawRead struct {
	readID  uuid.UUID
	samples []int16
}

type rawReader struct {
	in io.Reader
}

func newRawReader(in io.Reader) *rawReader {
	return &rawReader{in: in}
}

// Next returns the following read, or io.EOF after the last record. A
// record cut short mid-read is reported as an error, never silently
// truncated.
func (r *rawReader) Next() (rawRead, error) {
	var read rawRead

	var header [20]byte
	if _, err := io.ReadFull(r.in, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return read, io.EOF
		}
		return read, fmt.Errorf("read record header: %w", err)
	}

	id, err := uuid.FromBytes(header[:16])
	if err != nil {
		return read, err
	}
	count := binary.LittleEndian.Uint32(header[16:20])

	buf := make([]byte, 2*int(count))
	if _, err := io.ReadFull(r.in, buf); err != nil {
		return read, fmt.Errorf("read %d samples for %s: %w", count, id, err)
	}

	samples := make([]int16, count)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}

	read.readID = id
	read.samples = samples
	return read, nil
}

// writeRawRead emits one record of the raw stream, used by tests and by
// tooling that produces conversion fixtures.
func writeRawRead(out io.Writer, readID uuid.UUID, samples []int16) error {
	var header [20]byte
	copy(header[:16], readID[:])
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(samples)))
	if _, err := out.Write(header[:]); err != nil {
		return err
	}

	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	_, err := out.Write(buf)
	return err
}
