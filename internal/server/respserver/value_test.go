package respserver

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{
			name:  "simple string",
			value: SimpleString("PONG"),
			want:  "+PONG\r\n",
		},
		{
			name:  "empty simple string",
			value: SimpleString(""),
			want:  "+\r\n",
		},
		{
			name:  "bulk string",
			value: BulkString("hello"),
			want:  "$5\r\nhello\r\n",
		},
		{
			name:  "empty bulk string",
			value: BulkString(""),
			want:  "$0\r\n\r\n",
		},
		{
			name:  "bulk string length counts bytes",
			value: BulkString("héllo"),
			want:  "$6\r\nhéllo\r\n",
		},
		{
			name:  "null bulk string",
			value: NullBulkString(),
			want:  "$-1\r\n",
		},
		{
			name:  "empty array",
			value: Array(),
			want:  "*0\r\n",
		},
		{
			name:  "flat array",
			value: Array(BulkString("SET"), BulkString("foo"), BulkString("bar")),
			want:  "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n",
		},
		{
			name:  "nested array",
			value: Array(Array(BulkString("a")), NullBulkString()),
			want:  "*2\r\n*1\r\n$1\r\na\r\n$-1\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tt.value.Encode()); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		want   string
		wantOK bool
	}{
		{"simple string", SimpleString("hi"), "hi", true},
		{"bulk string", BulkString("hi"), "hi", true},
		{"empty bulk string", BulkString(""), "", true},
		{"null bulk string", NullBulkString(), "", false},
		{"array", Array(BulkString("hi")), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Text()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Text() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal simple", SimpleString("x"), SimpleString("x"), true},
		{"different type", SimpleString("x"), BulkString("x"), false},
		{"null vs empty bulk", NullBulkString(), BulkString(""), false},
		{"equal arrays", Array(BulkString("a")), Array(BulkString("a")), true},
		{"different lengths", Array(BulkString("a")), Array(), false},
		{
			"nested mismatch",
			Array(Array(BulkString("a"))),
			Array(Array(BulkString("b"))),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Round-trip: decoding is the left inverse of encoding for every value
// producible by the decode grammar (bulk strings and arrays; simple
// strings are an encode-only reply type).
func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []Value{
		BulkString(""),
		BulkString("x"),
		BulkString("hello world"),
		BulkString("with\r\nembedded\r\ndelimiters"),
		NullBulkString(),
		Array(),
		Array(BulkString("PING")),
		Array(BulkString("SET"), BulkString("k"), BulkString("v")),
		Array(BulkString("SET"), BulkString("k"), BulkString("v"), BulkString("px"), BulkString("100")),
		Array(NullBulkString(), BulkString("a"), Array(BulkString("b"), Array())),
	}

	for _, v := range values {
		wire := v.Encode()
		got, rest, err := Decode(wire)
		if err != nil {
			t.Errorf("Decode(%q) error: %v", wire, err)
			continue
		}
		if !got.Equal(v) {
			t.Errorf("Decode(%q) = %q, want %q", wire, got, v)
		}
		if len(rest) != 0 {
			t.Errorf("Decode(%q) left %q unconsumed", wire, rest)
		}
	}
}
