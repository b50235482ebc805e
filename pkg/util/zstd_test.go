package util_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/buildbarn/bb-blockstream/pkg/util"
	"github.com/stretchr/testify/require"
)

type closeTrackingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closeTrackingBuffer) Close() error {
	b.closed = true
	return nil
}

func TestZstdWriteCloserAndReadCloser(t *testing.T) {
	payload := bytes.Repeat([]byte("partition contents "), 1000)

	compressed := &closeTrackingBuffer{}
	w, err := util.NewZstdWriteCloser(compressed)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.True(t, compressed.closed)
	require.Less(t, compressed.Len(), len(payload))

	r, err := util.NewZstdReadCloser(io.NopCloser(bytes.NewReader(compressed.Bytes())))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
	require.NoError(t, r.Close())
}
