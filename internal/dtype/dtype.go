// Package dtype converts between raw element bytes and Go slices.
//
// Integers and floats map to the Go type of the same width and signedness;
// fixed and variable-length strings map to string:
//
//	int8..int64, uint8..uint64   []int8..[]int64, []uint8..[]uint64
//	float32, float64             []float32, []float64
//	string(n), vlen string       []string
//
// Enums decode as their integer base and bitfields as unsigned integers.
package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-usvol/internal/message"
)

// ErrUnsupported reports a datatype with no Go mapping.
var ErrUnsupported = errors.New("unsupported datatype")

// GoType returns the slice element type Decode produces for dt.
func GoType(dt *message.Datatype) (reflect.Type, error) {
	if dt == nil {
		return nil, errors.New("nil datatype")
	}
	switch dt.Class {
	case message.ClassFixedPoint, message.ClassBitfield:
		return intType(int(dt.Size), dt.Signed && dt.Class == message.ClassFixedPoint)
	case message.ClassEnum:
		if dt.Base == nil {
			return nil, fmt.Errorf("enum without base type: %w", ErrUnsupported)
		}
		return GoType(dt.Base)
	case message.ClassFloatPoint:
		switch dt.Size {
		case 4:
			return reflect.TypeOf((*float32)(nil)).Elem(), nil
		case 8:
			return reflect.TypeOf((*float64)(nil)).Elem(), nil
		}
	case message.ClassString:
		return reflect.TypeOf((*string)(nil)).Elem(), nil
	case message.ClassVarLen:
		if dt.VarLenString {
			return reflect.TypeOf((*string)(nil)).Elem(), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", dt, ErrUnsupported)
}

func intType(size int, signed bool) (reflect.Type, error) {
	switch {
	case size == 1 && signed:
		return reflect.TypeOf((*int8)(nil)).Elem(), nil
	case size == 1:
		return reflect.TypeOf((*uint8)(nil)).Elem(), nil
	case size == 2 && signed:
		return reflect.TypeOf((*int16)(nil)).Elem(), nil
	case size == 2:
		return reflect.TypeOf((*uint16)(nil)).Elem(), nil
	case size == 4 && signed:
		return reflect.TypeOf((*int32)(nil)).Elem(), nil
	case size == 4:
		return reflect.TypeOf((*uint32)(nil)).Elem(), nil
	case size == 8 && signed:
		return reflect.TypeOf((*int64)(nil)).Elem(), nil
	case size == 8:
		return reflect.TypeOf((*uint64)(nil)).Elem(), nil
	}
	return nil, fmt.Errorf("%d-byte integer: %w", size, ErrUnsupported)
}

// ByteOrder returns the byte order of a numeric datatype.
func ByteOrder(dt *message.Datatype) binary.ByteOrder {
	if dt.Order == message.OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsNumeric reports integer and floating-point datatypes.
func IsNumeric(dt *message.Datatype) bool {
	return dt.Class == message.ClassFixedPoint || dt.Class == message.ClassFloatPoint
}
