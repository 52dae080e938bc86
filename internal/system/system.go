package system

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/rs/zerolog/log"
	"github.com/x448/float16"
)

// ByteOrder is the wire order for every binary format this tool touches:
// embedding blobs at rest, raw tensor contents on the inference protocol,
// and fixed32 floats inside serialized records are all little-endian.
var ByteOrder = &CustomByteOrder{ByteOrder: binary.LittleEndian}

var nativeOrder binary.ByteOrder

type CustomByteOrder struct {
	binary.ByteOrder
}

func Init() {
	loadNativeByteOrder()
	if nativeOrder != binary.LittleEndian {
		log.Warn().Msgf("Host byte order is %v, decoding falls back to byte-wise little-endian reads", nativeOrder)
	}
}

func loadNativeByteOrder() {
	buf := [2]byte{}
	*(*uint16)(unsafe.Pointer(&buf[0])) = uint16(0xABCD)

	switch buf {
	case [2]byte{0xCD, 0xAB}:
		nativeOrder = binary.LittleEndian
	case [2]byte{0xAB, 0xCD}:
		nativeOrder = binary.BigEndian
	default:
		panic("Could not determine endianness.")
	}
}

/**
 * Extensions for Float16/32
 */
func (c *CustomByteOrder) PutFloat16FromFP32(b []byte, v float32) {
	fp16 := float16.Fromfloat32(v)
	c.ByteOrder.PutUint16(b, fp16.Bits())
}

func (c *CustomByteOrder) PutFloat32(b []byte, v float32) {
	c.PutUint32(b, math.Float32bits(v))
}

func (c *CustomByteOrder) Float16AsFP32(b []byte) float32 {
	return float16.Frombits(c.ByteOrder.Uint16(b)).Float32()
}

func (c *CustomByteOrder) Float32(b []byte) float32 {
	return math.Float32frombits(c.Uint32(b))
}

func (c *CustomByteOrder) Float32Vector(b []byte) []float32 {
	if len(b)%4 != 0 {
		panic("invalid byte slice length: must be a multiple of 4")
	}
	n := len(b) / 4
	result := make([]float32, n)

	for i := 0; i < n; i++ {
		offset := i * 4
		result[i] = math.Float32frombits(c.Uint32(b[offset : offset+4]))
	}

	return result
}

func (c *CustomByteOrder) PutFloat32Vector(b []byte, v []float32) {
	if len(b) < 4*len(v) {
		panic("invalid byte slice length: need 4 bytes per element")
	}
	for i, f := range v {
		c.PutFloat32(b[i*4:i*4+4], f)
	}
}

func (c *CustomByteOrder) FP16Vector(b []byte) []float32 {
	if len(b)%2 != 0 {
		panic("invalid byte slice length: must be a multiple of 2")
	}

	n := len(b) / 2
	result := make([]float32, n)

	for i := 0; i < n; i++ {
		offset := i * 2
		result[i] = c.Float16AsFP32(b[offset : offset+2])
	}

	return result
}

func (c *CustomByteOrder) PutFP16VectorFromFP32(b []byte, v []float32) {
	if len(b) < 2*len(v) {
		panic("invalid byte slice length: need 2 bytes per element")
	}
	for i, f := range v {
		c.PutFloat16FromFP32(b[i*2:i*2+2], f)
	}
}

// Float32VectorBytes renders a float32 slice in wire order.
func Float32VectorBytes(v []float32) []byte {
	b := make([]byte, 4*len(v))
	ByteOrder.PutFloat32Vector(b, v)
	return b
}
