package svb16

import "fmt"

// Decode unpacks count samples from data and verifies that the buffer holds
// exactly the key and data bytes the length codes imply: leftover bytes are
// an error, as is a shortfall.
func Decode(data []byte, count int) ([]int16, error) {
	samples, consumed, err := DecodeConsumed(data, count)
	if err != nil {
		return nil, err
	}
	if consumed != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d samples",
			ErrShortBuffer, len(data)-consumed, count)
	}
	return samples, nil
}

// DecodeConsumed unpacks count samples from the front of data and reports
// how many bytes were consumed. Callers that frame the encoded bytes
// themselves use the consumed count to detect trailing garbage.
func DecodeConsumed(data []byte, count int) ([]int16, int, error) {
	keyLen := keyLength(count)
	if len(data) < keyLen {
		return nil, 0, fmt.Errorf("%w: need %d key bytes, have %d",
			ErrShortBuffer, keyLen, len(data))
	}
	keys := data[:keyLen]
	pos := keyLen

	samples := make([]int16, count)
	var prev int16
	for i := 0; i < count; i++ {
		code := (keys[i>>2] >> (2 * (uint(i) & 3))) & 3

		var value uint16
		switch code {
		case 0:
			if pos >= len(data) {
				return nil, 0, fmt.Errorf("%w: data exhausted at sample %d", ErrShortBuffer, i)
			}
			value = uint16(data[pos])
			pos++
		case 1:
			if pos+2 > len(data) {
				return nil, 0, fmt.Errorf("%w: data exhausted at sample %d", ErrShortBuffer, i)
			}
			value = uint16(data[pos]) | uint16(data[pos+1])<<8
			pos += 2
		default:
			return nil, 0, fmt.Errorf("%w: code %d at sample %d", ErrBadKeyCode, code, i)
		}

		prev += unzigzag(value)
		samples[i] = prev
	}

	return samples, pos, nil
}
