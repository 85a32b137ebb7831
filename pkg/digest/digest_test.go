package digest_test

import (
	"bytes"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/rohmanhakim/repo-manifest/pkg/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestHashBytes_SHA256(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "hello",
			data:     []byte("hello"),
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:     "world",
			data:     []byte("world"),
			expected: "486ea46224d1bb4fb680f34f7c9ad96a8f24ec88be73ea8e5a6c65260e9cb8a7",
		},
		{
			name:     "binary data",
			data:     []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0xfe, 0xfd, 0xfc},
			expected: "fed271e1776a1c254c9e8ea187937d24418e1d01781eee828507725de159dd58",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := digest.HashBytes(tt.data, digest.AlgoSHA256)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHashBytes_BLAKE3(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")

	result, err := digest.HashBytes(data, digest.AlgoBLAKE3)
	require.NoError(t, err)

	expectedHash := blake3.Sum256(data)
	assert.Equal(t, hex.EncodeToString(expectedHash[:]), result)
}

func TestHashBytes_UnsupportedAlgorithm(t *testing.T) {
	result, err := digest.HashBytes([]byte("test data"), "md5")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported digest algorithm")
	assert.Empty(t, result)
}

// Digesting the same content with arbitrary chunk boundaries must produce
// an identical digest.
func TestNew_ChunkBoundaryIndependence(t *testing.T) {
	data := []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

	for _, algo := range []digest.Algo{digest.AlgoSHA256, digest.AlgoBLAKE3} {
		t.Run(string(algo), func(t *testing.T) {
			whole, err := digest.HashBytes(data, algo)
			require.NoError(t, err)

			chunkSizes := []int{1, 2, 3, 5, 7, len(data)}
			for _, size := range chunkSizes {
				h, err := digest.New(algo)
				require.NoError(t, err)
				for start := 0; start < len(data); start += size {
					end := start + size
					if end > len(data) {
						end = len(data)
					}
					_, err := h.Write(data[start:end])
					require.NoError(t, err)
				}
				assert.Equal(t, whole, digest.Encode(h), "chunk size %d", size)
			}
		})
	}
}

func TestHashReader(t *testing.T) {
	data := "streaming digest content"

	hexDigest, n, err := digest.HashReader(strings.NewReader(data), digest.AlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	expected, err := digest.HashBytes([]byte(data), digest.AlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, expected, hexDigest)
}

func TestHashReader_OneBytePerRead(t *testing.T) {
	data := []byte("incremental network delivery")

	// iotest.OneByteReader forces single-byte chunks, mimicking a slow stream.
	hexDigest, n, err := digest.HashReader(iotest.OneByteReader(bytes.NewReader(data)), digest.AlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	expected, err := digest.HashBytes(data, digest.AlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, expected, hexDigest)
}

func TestHashReader_EmptyStream(t *testing.T) {
	hexDigest, n, err := digest.HashReader(bytes.NewReader(nil), digest.AlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hexDigest)
}

func TestHashReader_PropagatesReadError(t *testing.T) {
	broken := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(io.ErrUnexpectedEOF))

	_, _, err := digest.HashReader(broken, digest.AlgoSHA256)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestParseAlgo(t *testing.T) {
	algo, err := digest.ParseAlgo("sha256")
	require.NoError(t, err)
	assert.Equal(t, digest.AlgoSHA256, algo)

	algo, err = digest.ParseAlgo("blake3")
	require.NoError(t, err)
	assert.Equal(t, digest.AlgoBLAKE3, algo)

	_, err = digest.ParseAlgo("crc32")
	assert.Error(t, err)
}
