package util

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// NewZstdReadCloser creates a new io.ReadCloser that wraps an underlying
// reader and decompresses the data using Zstandard. The reader will close
// both the decoder and the underlying reader when it is closed.
func NewZstdReadCloser(underlyingReader io.ReadCloser, options ...zstd.DOption) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(underlyingReader, options...)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{Decoder: decoder, underlyingReader: underlyingReader}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder

	underlyingReader io.ReadCloser
}

func (r *zstdReadCloser) Close() error {
	r.Decoder.Close()
	return r.underlyingReader.Close()
}

// NewZstdWriteCloser creates a new io.WriteCloser that compresses data
// using Zstandard before writing it to an underlying writer. Closing
// it flushes the final frame and closes the underlying writer.
func NewZstdWriteCloser(underlyingWriter io.WriteCloser, options ...zstd.EOption) (io.WriteCloser, error) {
	encoder, err := zstd.NewWriter(underlyingWriter, options...)
	if err != nil {
		return nil, err
	}
	return &zstdWriteCloser{Encoder: encoder, underlyingWriter: underlyingWriter}, nil
}

type zstdWriteCloser struct {
	*zstd.Encoder

	underlyingWriter io.WriteCloser
}

func (w *zstdWriteCloser) Close() error {
	if err := w.Encoder.Close(); err != nil {
		w.underlyingWriter.Close()
		return err
	}
	return w.underlyingWriter.Close()
}
