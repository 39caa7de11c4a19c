package podenv

import (
	"fmt"
	"io"
	"sync"
)

// Out is the process output sink. Writes are serialized so concurrent
// callers never interleave within a single write.
type Out struct {
	mu sync.Mutex
	w  io.Writer
}

func NewOut(w io.Writer) *Out {
	return &Out{w: w}
}

func (o *Out) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *Out) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o, format, args...)
}

func (o *Out) Println(args ...any) {
	_, _ = fmt.Fprintln(o, args...)
}
