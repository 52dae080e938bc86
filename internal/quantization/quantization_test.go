package quantization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config/enums"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
)

func fp32Bytes(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		system.ByteOrder.PutFloat32(out[i*4:], v)
	}
	return out
}

func TestConvertFP32ToFP16AndBack(t *testing.T) {
	// Values exactly representable in half precision survive the round trip.
	original := fp32Bytes(0.5, -1.0, 2.0, 1024.0, 0.0)

	half, err := Convert(original, enums.DataTypeFP32, enums.DataTypeFP16)
	require.NoError(t, err)
	assert.Equal(t, 10, len(half))

	restored, err := Convert(half, enums.DataTypeFP16, enums.DataTypeFP32)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestConvertFP32ToFP16IsLossy(t *testing.T) {
	original := fp32Bytes(1.0 / 3.0)

	half, err := Convert(original, enums.DataTypeFP32, enums.DataTypeFP16)
	require.NoError(t, err)

	restored, err := Convert(half, enums.DataTypeFP16, enums.DataTypeFP32)
	require.NoError(t, err)

	got := system.ByteOrder.Float32(restored)
	assert.NotEqual(t, float32(1.0/3.0), got)
	assert.InDelta(t, 1.0/3.0, got, 1e-3)
}

func TestConvertIdentityPassThrough(t *testing.T) {
	original := fp32Bytes(1.5, 2.5)
	out, err := Convert(original, enums.DataTypeFP32, enums.DataTypeFP32)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestConvertRejectsRaggedInput(t *testing.T) {
	_, err := Convert([]byte{0x00, 0x01, 0x02}, enums.DataTypeFP32, enums.DataTypeFP16)
	require.Error(t, err)

	_, err = Convert([]byte{0x00}, enums.DataTypeFP16, enums.DataTypeFP32)
	require.Error(t, err)
}

func TestGetConversionFunctionUnsupportedPair(t *testing.T) {
	_, err := GetConversionFunction(enums.DataTypeUnknown, enums.DataTypeFP32)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported conversion")
}

func TestConvertEmptyInput(t *testing.T) {
	out, err := Convert([]byte{}, enums.DataTypeFP16, enums.DataTypeFP32)
	require.NoError(t, err)
	assert.Empty(t, out)
}
