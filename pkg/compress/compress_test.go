package compress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleReport = []byte(strings.Repeat(`<ReportItem port="22" svc_name="ssh" protocol="tcp" severity="0" pluginID="10267" pluginFamily="Service detection"/>`, 64))

func TestNewReader_RoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmZSTD, AlgorithmGzip, AlgorithmNone} {
		t.Run(string(alg), func(t *testing.T) {
			packed, err := Compress(alg, sampleReport)
			require.NoError(t, err)
			assert.Equal(t, alg, Detect(packed))

			rc, detected, err := NewReader(bytes.NewReader(packed))
			require.NoError(t, err)
			defer rc.Close()
			assert.Equal(t, alg, detected)

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, sampleReport, got)
		})
	}
}

func TestNewReader_ShortInput(t *testing.T) {
	rc, alg, err := NewReader(strings.NewReader("<a"))
	require.NoError(t, err)
	assert.Equal(t, AlgorithmNone, alg)

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<a", string(got))
}

func TestNewReader_CorruptGzip(t *testing.T) {
	_, _, err := NewReader(bytes.NewReader([]byte{0x1f, 0x8b, 0x00, 0x00}))
	assert.Error(t, err)
}

func TestCompress_Unsupported(t *testing.T) {
	_, err := Compress(Algorithm("lz4"), sampleReport)
	assert.Error(t, err)
}
