package h4

import (
	"time"
)

const (
	eventHeaderLength = 3 // type, code, len
	aclHeaderLength   = 5 // type, handle(2), len(2)
	frameTimeout      = 500 * time.Millisecond
	frameCapacity     = 1024
)

// frame reassembles H4 packets from arbitrary chunks of a byte stream. A
// partial packet older than frameTimeout is discarded.
type frame struct {
	b       []byte
	timeout time.Time
	out     chan<- []byte
	now     func() time.Time
}

func newFrame(out chan<- []byte) *frame {
	return &frame{
		b:   make([]byte, 0, frameCapacity),
		out: out,
		now: time.Now,
	}
}

// Assemble appends a chunk and emits every packet it completes.
func (f *frame) Assemble(b []byte) {
	if len(b) == 0 {
		return
	}
	if len(f.b) != 0 && f.now().After(f.timeout) {
		f.reset()
	}
	if len(f.b) == 0 {
		f.timeout = f.now().Add(frameTimeout)
	}
	f.b = append(f.b, b...)

	for {
		f.sync()
		n, ok := f.length()
		if !ok || len(f.b) < n {
			return
		}

		p := make([]byte, n)
		copy(p, f.b)
		f.out <- p

		f.b = append(f.b[:0], f.b[n:]...)
		f.timeout = f.now().Add(frameTimeout)
	}
}

// sync drops bytes up to the next packet indicator.
func (f *frame) sync() {
	for i, v := range f.b {
		if v == eventPacket || v == aclPacket {
			if i > 0 {
				f.b = append(f.b[:0], f.b[i:]...)
			}
			return
		}
	}
	f.b = f.b[:0]
}

// length returns the total length of the buffered packet once its header is
// complete.
func (f *frame) length() (int, bool) {
	if len(f.b) == 0 {
		return 0, false
	}

	switch f.b[0] {
	case eventPacket:
		if len(f.b) < eventHeaderLength {
			return 0, false
		}
		return eventHeaderLength + int(f.b[2]), true

	case aclPacket:
		if len(f.b) < aclHeaderLength {
			return 0, false
		}
		return aclHeaderLength + (int(f.b[3]) | int(f.b[4])<<8), true

	default:
		return 0, false
	}
}

func (f *frame) reset() {
	f.b = f.b[:0]
	f.timeout = time.Time{}
}
