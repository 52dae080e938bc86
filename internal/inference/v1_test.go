package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	triton "github.com/Meesho/BharatMLStack/trainset-builder/internal/inference/client/grpc"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
)

func TestDecodeOutputTypedContents(t *testing.T) {
	c := &ClientV1{outputName: "extra"}
	resp := &triton.ModelInferResponse{
		Outputs: []*triton.ModelInferResponse_InferOutputTensor{
			{
				Name:     "extra",
				Datatype: "FP32",
				Shape:    []int64{1, 2},
				Contents: &triton.InferTensorContents{Fp32Contents: []float32{0.5, -2}},
			},
		},
	}

	vec, err := c.decodeOutput(resp)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -2}, vec)
}

func TestDecodeOutputRawFP32(t *testing.T) {
	c := &ClientV1{outputName: "extra"}
	resp := &triton.ModelInferResponse{
		Outputs: []*triton.ModelInferResponse_InferOutputTensor{
			{Name: "other", Datatype: "FP32"},
			{Name: "extra", Datatype: "FP32", Shape: []int64{1, 2}},
		},
		RawOutputContents: [][]byte{
			system.Float32VectorBytes([]float32{9}),
			system.Float32VectorBytes([]float32{0.25, 1.5}),
		},
	}

	vec, err := c.decodeOutput(resp)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 1.5}, vec)
}

func TestDecodeOutputRawFP16(t *testing.T) {
	raw := make([]byte, 4)
	system.ByteOrder.PutFP16VectorFromFP32(raw, []float32{1, -0.5})

	c := &ClientV1{outputName: "extra"}
	resp := &triton.ModelInferResponse{
		Outputs: []*triton.ModelInferResponse_InferOutputTensor{
			{Name: "extra", Datatype: "FP16", Shape: []int64{1, 2}},
		},
		RawOutputContents: [][]byte{raw},
	}

	vec, err := c.decodeOutput(resp)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -0.5}, vec)
}

func TestDecodeOutputErrors(t *testing.T) {
	c := &ClientV1{outputName: "extra"}

	_, err := c.decodeOutput(&triton.ModelInferResponse{})
	assert.ErrorContains(t, err, "missing from response")

	_, err = c.decodeOutput(&triton.ModelInferResponse{
		Outputs: []*triton.ModelInferResponse_InferOutputTensor{
			{Name: "extra", Datatype: "FP32"},
		},
	})
	assert.ErrorContains(t, err, "no contents")

	_, err = c.decodeOutput(&triton.ModelInferResponse{
		Outputs: []*triton.ModelInferResponse_InferOutputTensor{
			{Name: "extra", Datatype: "INT64"},
		},
		RawOutputContents: [][]byte{{1, 2, 3, 4, 5, 6, 7, 8}},
	})
	assert.ErrorContains(t, err, "unsupported datatype")

	_, err = c.decodeOutput(&triton.ModelInferResponse{
		Outputs: []*triton.ModelInferResponse_InferOutputTensor{
			{Name: "extra", Datatype: "FP32"},
		},
		RawOutputContents: [][]byte{{1, 2, 3}},
	})
	assert.ErrorContains(t, err, "not a multiple of 4")
}
