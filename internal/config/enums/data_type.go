package enums

import (
	"fmt"
	"strings"
)

// DataType names the element encoding of a stored or wire float vector.
type DataType string

const (
	DataTypeUnknown DataType = "DataTypeUnknown"
	DataTypeFP16    DataType = "DataTypeFP16"
	DataTypeFP32    DataType = "DataTypeFP32"
)

func (d DataType) String() string {
	switch d {
	case DataTypeFP16:
		return "DataTypeFP16"
	case DataTypeFP32:
		return "DataTypeFP32"
	default:
		return "DataTypeUnknown"
	}
}

// Size returns the number of bytes one element occupies.
func (d DataType) Size() int {
	switch d {
	case DataTypeFP16:
		return 2
	case DataTypeFP32:
		return 4
	default:
		return 0
	}
}

// WireName returns the datatype token used on the inference protocol.
func (d DataType) WireName() string {
	switch d {
	case DataTypeFP16:
		return "FP16"
	case DataTypeFP32:
		return "FP32"
	default:
		return ""
	}
}

// ParseDataType accepts both config tokens ("fp32") and wire tokens ("FP32").
func ParseDataType(s string) (DataType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FP16":
		return DataTypeFP16, nil
	case "", "FP32":
		return DataTypeFP32, nil
	default:
		return DataTypeUnknown, fmt.Errorf("unsupported data type: %q", s)
	}
}
