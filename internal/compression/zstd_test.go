package compression

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populateFP32Bytes(n int) []byte {
	r := rand.New(rand.NewSource(42))
	data := make([]byte, 4*n)
	r.Read(data)
	return data
}

func TestZStdRoundTrip(t *testing.T) {
	data := populateFP32Bytes(2048)

	enc := NewZStdEncoder()
	dec := NewZStdDecoder()
	assert.Equal(t, TypeZSTD, enc.EncoderType())
	assert.Equal(t, TypeZSTD, dec.DecoderType())

	cdata := enc.Encode(data)
	out, err := dec.Decode(cdata)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestZStdDecodeRejectsGarbage(t *testing.T) {
	dec := NewZStdDecoder()
	_, err := dec.Decode([]byte("not a zstd frame"))
	assert.Error(t, err)
}

func TestNoOpCodec(t *testing.T) {
	data := []byte{1, 2, 3}

	enc, err := GetEncoder(TypeNone)
	require.NoError(t, err)
	dec, err := GetDecoder(TypeNone)
	require.NoError(t, err)

	out, err := dec.Decode(enc.Encode(data))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "", want: TypeNone},
		{in: "none", want: TypeNone},
		{in: "zstd", want: TypeZSTD},
		{in: "gzip", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestGetEncoderUnknownType(t *testing.T) {
	_, err := GetEncoder(Type(99))
	assert.Error(t, err)
	_, err = GetDecoder(Type(99))
	assert.Error(t, err)
}
