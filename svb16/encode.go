package svb16

// Encode packs samples into the key+data layout described in the package
// documentation. It is a pure function of the sample sequence and emits no
// padding or metadata; decoding requires the original sample count.
func Encode(samples []int16) []byte {
	keyLen := keyLength(len(samples))
	buf := make([]byte, MaxEncodedLength(len(samples)))
	keys := buf[:keyLen]
	data := buf[keyLen:]

	n := 0
	var prev int16
	for i, sample := range samples {
		delta := sample - prev
		prev = sample

		value := zigzag(delta)
		data[n] = byte(value)
		n++
		if value > 0xff {
			data[n] = byte(value >> 8)
			n++
			keys[i>>2] |= 1 << (2 * (uint(i) & 3))
		}
	}

	return buf[:keyLen+n]
}
