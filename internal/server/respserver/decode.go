package respserver

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Decode errors. Callers match with errors.Is.
var (
	ErrMissingDelimiter = errors.New("resp: missing CRLF delimiter")
	ErrUnknownType      = errors.New("resp: unknown type tag")
	ErrInvalidLength    = errors.New("resp: invalid length")
)

var crlf = []byte("\r\n")

// Decode parses one protocol value from the front of buf and returns
// the remaining unconsumed bytes. Each value consumes exactly the bytes
// its own wire form occupies, so array decoding can chain element by
// element through the tail.
//
// Only the request-side grammar is dispatched here: arrays ('*') and
// bulk strings ('$'). Simple strings exist as an encode-side reply type
// and are deliberately not decoded from the wire.
func Decode(buf []byte) (Value, []byte, error) {
	head, tail, found := bytes.Cut(buf, crlf)
	if !found {
		return Value{}, nil, ErrMissingDelimiter
	}
	if len(head) < 2 {
		return Value{}, nil, fmt.Errorf("%w: short header %q", ErrUnknownType, head)
	}

	switch head[0] {
	case '*':
		return decodeArray(head[1:], tail)
	case '$':
		return decodeBulkString(head[1:], tail)
	default:
		return Value{}, nil, fmt.Errorf("%w: %q", ErrUnknownType, head[0])
	}
}

func decodeArray(header []byte, tail []byte) (Value, []byte, error) {
	count, err := strconv.Atoi(string(header))
	if err != nil || count < 0 {
		return Value{}, nil, fmt.Errorf("%w: bad array count %q", ErrInvalidLength, header)
	}

	elts := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		elt, rest, err := Decode(tail)
		if err != nil {
			return Value{}, nil, err
		}
		elts = append(elts, elt)
		tail = rest
	}
	return Value{Type: TypeArray, Array: elts}, tail, nil
}

func decodeBulkString(header []byte, tail []byte) (Value, []byte, error) {
	length, err := strconv.Atoi(string(header))
	if err != nil {
		return Value{}, nil, fmt.Errorf("%w: bad bulk length %q", ErrInvalidLength, header)
	}
	if length == -1 {
		// Null bulk string; no payload bytes are consumed.
		return NullBulkString(), tail, nil
	}
	if length < 0 {
		return Value{}, nil, fmt.Errorf("%w: negative bulk length %d", ErrInvalidLength, length)
	}
	if len(tail) < length {
		return Value{}, nil, fmt.Errorf("%w: bulk payload truncated, want %d bytes have %d", ErrInvalidLength, length, len(tail))
	}

	payload := string(tail[:length])
	rest := tail[length:]
	switch {
	case len(rest) == 0:
		// Buffer ends exactly at the payload; tolerated for frames cut
		// at a read boundary.
	case len(rest) >= 2 && rest[0] == '\r' && rest[1] == '\n':
		rest = rest[2:]
	default:
		return Value{}, nil, fmt.Errorf("%w: bulk payload not CRLF-terminated", ErrMissingDelimiter)
	}
	return BulkString(payload), rest, nil
}
