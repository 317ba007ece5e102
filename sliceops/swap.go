// Package sliceops holds byte-slice helpers for the wire codecs.
package sliceops

// Reversed returns a copy of b in reverse order. BD_ADDRs travel least
// significant byte first.
func Reversed(b []byte) []byte {
	r := make([]byte, len(b))
	for i, v := range b {
		r[len(b)-1-i] = v
	}
	return r
}
