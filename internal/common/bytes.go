package common

// WipeByteArray zeroes a sensitive buffer in place. Callers use it to scrub
// passwords once they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
