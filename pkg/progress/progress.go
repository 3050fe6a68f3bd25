package progress

import (
	"io"
	"sync"
)

// Reporter receives byte counts for a single transfer. OnProgress is called
// synchronously from the goroutine performing the transfer.
type Reporter interface {
	OnProgress(transferred, total int64)
	Finish()
}

// Factory creates a Reporter for one transfer. total is -1 when the size is unknown.
type Factory func(description string, total int64) Reporter

// Func adapts a plain callback to a Reporter.
type Func func(transferred, total int64)

func (f Func) OnProgress(transferred, total int64) {
	f(transferred, total)
}

func (f Func) Finish() {}

type nopReporter struct{}

func (nopReporter) OnProgress(int64, int64) {}

func (nopReporter) Finish() {}

// Discard is a Factory that reports nothing.
func Discard(string, int64) Reporter {
	return nopReporter{}
}

// Each returns a Factory that hands every transfer to the same callback.
func Each(f Func) Factory {
	return func(string, int64) Reporter {
		return f
	}
}

type countingReader struct {
	r           io.Reader
	total       int64
	transferred int64
	rep         Reporter
}

// NewReader reports every byte read from r. When r is also an io.Seeker and
// an io.ReaderAt the result is too, so consumers that read sections of the
// body in place keep working; progress is then the furthest offset read.
func NewReader(r io.Reader, total int64, rep Reporter) io.Reader {
	if rs, ok := r.(readSeekerAt); ok {
		return &offsetReader{r: rs, total: total, rep: rep}
	}
	return &countingReader{r: r, total: total, rep: rep}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.transferred += int64(n)
		c.rep.OnProgress(c.transferred, c.total)
	}
	return n, err
}

type readSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

// offsetReader reports a high-water mark, so rereads after a seek (checksum
// passes, retried parts) never move progress backwards or past total.
type offsetReader struct {
	mu          sync.Mutex
	r           readSeekerAt
	pos         int64
	total       int64
	transferred int64
	rep         Reporter
}

func (o *offsetReader) Read(p []byte) (int, error) {
	n, err := o.r.Read(p)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pos += int64(n)
	o.advance(o.pos)
	return n, err
}

func (o *offsetReader) ReadAt(p []byte, off int64) (int, error) {
	n, err := o.r.ReadAt(p, off)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advance(off + int64(n))
	return n, err
}

func (o *offsetReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := o.r.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	o.mu.Lock()
	o.pos = pos
	o.mu.Unlock()
	return pos, nil
}

func (o *offsetReader) advance(reached int64) {
	if o.total > 0 {
		reached = min(reached, o.total)
	}
	if reached > o.transferred {
		o.transferred = reached
		o.rep.OnProgress(o.transferred, o.total)
	}
}

type countingWriter struct {
	w           io.Writer
	total       int64
	transferred int64
	rep         Reporter
}

// NewWriter reports every byte written to w.
func NewWriter(w io.Writer, total int64, rep Reporter) io.Writer {
	return &countingWriter{w: w, total: total, rep: rep}
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.transferred += int64(n)
		c.rep.OnProgress(c.transferred, c.total)
	}
	return n, err
}
