package quantization

import (
	"fmt"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config/enums"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
)

// Byte sizes for floating-point formats
const (
	FP32NumBytes = 4
	FP16NumBytes = 2
)

// convertVector re-encodes a packed vector element by element.
func convertVector(
	bytes []byte,
	sourceNumBytes int,
	targetNumBytes int,
	converter func([]byte) []byte,
) []byte {
	numValues := len(bytes) / sourceNumBytes
	result := make([]byte, numValues*targetNumBytes)
	for i := 0; i < numValues; i++ {
		start := i * sourceNumBytes
		end := start + sourceNumBytes

		converted := converter(bytes[start:end])
		copy(result[i*targetNumBytes:(i+1)*targetNumBytes], converted)
	}
	return result
}

func quantizeBytesFromFP32ToFP16(bytes []byte) []byte {
	valFP32 := system.ByteOrder.Float32(bytes)
	result := make([]byte, FP16NumBytes)
	system.ByteOrder.PutFloat16FromFP32(result, valFP32)
	return result
}

func expandBytesFromFP16ToFP32(bytes []byte) []byte {
	valFP32 := system.ByteOrder.Float16AsFP32(bytes)
	result := make([]byte, FP32NumBytes)
	system.ByteOrder.PutFloat32(result, valFP32)
	return result
}

func quantizeBytesFromFP32VectorToFP16Vector(bytes []byte) []byte {
	return convertVector(bytes, FP32NumBytes, FP16NumBytes, quantizeBytesFromFP32ToFP16)
}

func expandBytesFromFP16VectorToFP32Vector(bytes []byte) []byte {
	return convertVector(bytes, FP16NumBytes, FP32NumBytes, expandBytesFromFP16ToFP32)
}

// GetConversionFunction returns a vector converter for the given pair of
// data types, or an error when the pair is unsupported.
func GetConversionFunction(sourceDataType, requiredDataType enums.DataType) (func([]byte) []byte, error) {
	switch {
	case sourceDataType == enums.DataTypeFP32 && requiredDataType == enums.DataTypeFP16:
		return quantizeBytesFromFP32VectorToFP16Vector, nil
	case sourceDataType == enums.DataTypeFP16 && requiredDataType == enums.DataTypeFP32:
		return expandBytesFromFP16VectorToFP32Vector, nil
	default:
		return nil, fmt.Errorf("unsupported conversion from %s to %s", sourceDataType, requiredDataType)
	}
}

// Convert re-encodes a packed vector of sourceDataType elements as
// requiredDataType. The input length must be a whole number of source
// elements. Identical types pass through untouched.
func Convert(bytes []byte, sourceDataType, requiredDataType enums.DataType) ([]byte, error) {
	if sourceDataType == requiredDataType {
		return bytes, nil
	}
	if size := sourceDataType.Size(); size == 0 || len(bytes)%size != 0 {
		return nil, fmt.Errorf("byte length %d is not a multiple of %s element size", len(bytes), sourceDataType)
	}
	converter, err := GetConversionFunction(sourceDataType, requiredDataType)
	if err != nil {
		return nil, err
	}
	return converter(bytes), nil
}
