package respserver

import "strconv"

// ValueType tags the variant held by a Value. The tag byte doubles as
// the wire-format type prefix.
type ValueType byte

const (
	TypeSimpleString ValueType = '+'
	TypeBulkString   ValueType = '$'
	TypeArray        ValueType = '*'
)

// Value is one parsed protocol unit: a simple string, a bulk string
// (possibly null), or an array of further values.
type Value struct {
	Type ValueType

	// Str holds the payload of a simple string.
	Str string

	// Bulk holds the payload of a bulk string; Null marks the null
	// bulk string ($-1), in which case Bulk is empty.
	Bulk string
	Null bool

	// Array holds the ordered elements of an array value.
	Array []Value
}

// SimpleString builds a simple string value.
func SimpleString(s string) Value {
	return Value{Type: TypeSimpleString, Str: s}
}

// BulkString builds a bulk string value.
func BulkString(s string) Value {
	return Value{Type: TypeBulkString, Bulk: s}
}

// NullBulkString builds the null bulk string.
func NullBulkString() Value {
	return Value{Type: TypeBulkString, Null: true}
}

// Array builds an array value from its elements.
func Array(elts ...Value) Value {
	return Value{Type: TypeArray, Array: elts}
}

// Text returns the textual payload of a string-bearing value: the
// payload of a simple string or of a non-null bulk string. It reports
// false for null bulk strings and arrays.
func (v Value) Text() (string, bool) {
	switch v.Type {
	case TypeSimpleString:
		return v.Str, true
	case TypeBulkString:
		if v.Null {
			return "", false
		}
		return v.Bulk, true
	default:
		return "", false
	}
}

// Encode serializes the value to its wire form. Encoding is total and
// unambiguous: every value has exactly one wire representation.
func (v Value) Encode() []byte {
	return v.appendWire(nil)
}

func (v Value) appendWire(b []byte) []byte {
	switch v.Type {
	case TypeSimpleString:
		b = append(b, '+')
		b = append(b, v.Str...)
		return append(b, '\r', '\n')
	case TypeBulkString:
		if v.Null {
			return append(b, "$-1\r\n"...)
		}
		b = append(b, '$')
		b = strconv.AppendInt(b, int64(len(v.Bulk)), 10)
		b = append(b, '\r', '\n')
		b = append(b, v.Bulk...)
		return append(b, '\r', '\n')
	default: // TypeArray
		b = append(b, '*')
		b = strconv.AppendInt(b, int64(len(v.Array)), 10)
		b = append(b, '\r', '\n')
		for _, elt := range v.Array {
			b = elt.appendWire(b)
		}
		return b
	}
}

// Equal reports whether two values are structurally identical.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeSimpleString:
		return v.Str == other.Str
	case TypeBulkString:
		return v.Null == other.Null && v.Bulk == other.Bulk
	default:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	}
}

// String renders the wire form for logs and error messages.
func (v Value) String() string {
	return string(v.Encode())
}
