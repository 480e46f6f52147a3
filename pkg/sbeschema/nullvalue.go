package sbeschema

import "math"

// NullValueBits returns the on-wire bit pattern written for this field when
// it is absent from the input.
func (f FixedField) NullValueBits() uint64 {
	switch {
	case f.IsBoolean:
		return 0xFF
	case f.IsTimestamp:
		return 0
	case f.Kind == KindChar:
		return 0
	case f.Kind == KindUint8:
		return 0xFF
	case f.Kind == KindUint16:
		return 0xFFFF
	case f.Kind == KindUint32:
		return 0xFFFFFFFF
	case f.Kind == KindInt64:
		minInt64 := int64(math.MinInt64)
		return uint64(minInt64)
	case f.Kind == KindUint64:
		return 0
	case f.Kind == KindDouble:
		return math.Float64bits(math.NaN())
	default:
		return 0
	}
}
