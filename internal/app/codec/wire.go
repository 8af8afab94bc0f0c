package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendString appends a length-delimited field, omitting proto3 zero
// values.
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendInt32 appends a varint field, omitting proto3 zero values. Negative
// values use the standard sign-extended int64 encoding.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// field is one parsed wire field handed to a schema's decode callback.
type field struct {
	typ       protowire.Type
	varint    uint64
	bytes     []byte
	duplicate bool
}

func (f field) scalarString(dst *string) error {
	if f.typ != protowire.BytesType {
		return fmt.Errorf("wire type %d where length-delimited expected", f.typ)
	}
	if f.duplicate {
		return fmt.Errorf("duplicate scalar field")
	}
	*dst = string(f.bytes)
	return nil
}

func (f field) scalarInt32(dst *int32) error {
	if f.typ != protowire.VarintType {
		return fmt.Errorf("wire type %d where varint expected", f.typ)
	}
	if f.duplicate {
		return fmt.Errorf("duplicate scalar field")
	}
	*dst = int32(int64(f.varint))
	return nil
}

func (f field) repeatedString() (string, error) {
	if f.typ != protowire.BytesType {
		return "", fmt.Errorf("wire type %d where length-delimited expected", f.typ)
	}
	return string(f.bytes), nil
}

// walkFields parses the wire frames of data in order, invoking fn once per
// field. Truncated or malformed frames stop the walk with an error.
func walkFields(data []byte, fn func(num protowire.Number, f field) error) error {
	seen := make(map[protowire.Number]bool)
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		if num <= 0 {
			return fmt.Errorf("invalid field number %d", num)
		}
		data = data[n:]

		f := field{typ: typ, duplicate: seen[num]}
		seen[num] = true

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.varint = v
			data = data[n:]
		case protowire.BytesType:
			b, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.bytes = b
			data = data[n:]
		default:
			return fmt.Errorf("field %d: unsupported wire type %d", num, typ)
		}

		if err := fn(num, f); err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
	}
	return nil
}

func errUnknownField(num protowire.Number) error {
	return fmt.Errorf("unknown field number %d", num)
}
