package recordings

import (
	"context"
	"io"
	"net/http"
)

// ChunkSize is the read size used when streaming a recording.
const ChunkSize = 64 * 1024

// Stream copies r to w in ChunkSize pieces, flushing after each one when w
// supports it. It stops early when ctx is cancelled.
func Stream(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, ChunkSize)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return written, err
			}
			if m < n {
				return written, io.ErrShortWrite
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
