package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	updates  [][2]int64
	finished bool
}

func (r *recorder) OnProgress(transferred, total int64) {
	r.updates = append(r.updates, [2]int64{transferred, total})
}

func (r *recorder) Finish() {
	r.finished = true
}

func TestReaderReportsBytes(t *testing.T) {
	rec := &recorder{}
	content := strings.Repeat("x", 100)

	data, err := io.ReadAll(NewReader(strings.NewReader(content), int64(len(content)), rec))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	require.NotEmpty(t, rec.updates)
	last := rec.updates[len(rec.updates)-1]
	assert.Equal(t, [2]int64{100, 100}, last)
	for i := 1; i < len(rec.updates); i++ {
		assert.Greater(t, rec.updates[i][0], rec.updates[i-1][0])
	}
}

func TestReaderKeepsSeekAndReadAt(t *testing.T) {
	rec := &recorder{}
	content := "0123456789"

	r := NewReader(strings.NewReader(content), int64(len(content)), rec)
	rs, ok := r.(io.ReadSeeker)
	require.True(t, ok, "seekable source must stay seekable")
	ra, ok := r.(io.ReaderAt)
	require.True(t, ok, "source with ReadAt must keep ReadAt")

	size, err := rs.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	assert.Empty(t, rec.updates, "seeking is not progress")

	buf := make([]byte, 4)
	_, err = ra.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "6789", string(buf))
	assert.Equal(t, [2]int64{10, 10}, rec.updates[len(rec.updates)-1])

	// Rereading from the start never moves progress backwards.
	_, err = rs.Seek(0, io.SeekStart)
	require.NoError(t, err)
	data, err := io.ReadAll(rs)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Len(t, rec.updates, 1)
}

func TestReaderWithoutSeekIsPlain(t *testing.T) {
	r := NewReader(io.MultiReader(strings.NewReader("ab")), 2, &recorder{})
	_, ok := r.(io.Seeker)
	assert.False(t, ok)
}

func TestWriterReportsBytes(t *testing.T) {
	rec := &recorder{}
	var buf bytes.Buffer

	w := NewWriter(&buf, 11, rec)
	_, err := io.Copy(w, strings.NewReader("hello world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", buf.String())
	assert.Equal(t, [2]int64{11, 11}, rec.updates[len(rec.updates)-1])
}

func TestEachSharesCallback(t *testing.T) {
	var calls int
	factory := Each(func(transferred, total int64) {
		calls++
	})

	factory("a", 1).OnProgress(1, 1)
	factory("b", 2).OnProgress(2, 2)
	assert.Equal(t, 2, calls)
}

func TestDiscard(t *testing.T) {
	rep := Discard("ignored", 10)
	rep.OnProgress(5, 10)
	rep.Finish()
}

func TestBarRendersDescription(t *testing.T) {
	var buf bytes.Buffer

	rep := Bar(&buf)("models/weights.bin", 10)
	rep.OnProgress(5, 10)
	rep.Finish()

	assert.Contains(t, buf.String(), "models/weights.bin")
	assert.Contains(t, buf.String(), "\n", "completion ends the line")
}
