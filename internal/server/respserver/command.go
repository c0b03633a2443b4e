package respserver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadCommand marks a command construction failure. The connection
// loop treats it like a malformed frame and closes the connection.
var ErrBadCommand = errors.New("resp: malformed command")

// Store is the key-value store a command resolves against. Reads take a
// shard read lock, writes a shard write lock; lock scope is the single
// map operation.
type Store interface {
	Set(key, data string)
	SetWithTTL(key, data string, ttl time.Duration)
	Get(key string) (string, bool)
}

// Command is a request already resolved against the store: for SET and
// GET the store access happens at construction time, so the reply is
// computed independently of later store state.
type Command interface {
	// Name identifies the command for logging and metrics.
	Name() string
	// Reply returns the protocol value written back to the client.
	Reply() Value
}

// Ping answers PONG, or echoes its payload when one was supplied.
type Ping struct {
	Payload    string
	HasPayload bool
}

func (Ping) Name() string { return "PING" }

func (p Ping) Reply() Value {
	if p.HasPayload {
		return BulkString(p.Payload)
	}
	return SimpleString("PONG")
}

// Echo returns its payload as a bulk string.
type Echo struct {
	Payload string
}

func (Echo) Name() string { return "ECHO" }

func (e Echo) Reply() Value { return BulkString(e.Payload) }

// Set records that a key has been stored; the insert already happened
// during construction.
type Set struct{}

func (Set) Name() string { return "SET" }

func (Set) Reply() Value { return SimpleString("OK") }

// Get carries the value looked up during construction, if any.
type Get struct {
	Data  string
	Found bool
}

func (Get) Name() string { return "GET" }

func (g Get) Reply() Value {
	if g.Found {
		return BulkString(g.Data)
	}
	return NullBulkString()
}

// Build resolves a decoded top-level value into the commands it
// carries, in order. SET and GET touch st during construction.
//
// Unrecognized keywords inside an array are skipped without a reply;
// the element after a skipped keyword is treated as a fresh keyword
// candidate. A non-string-bearing element in keyword position, or a SET
// missing its key or value, fails the whole build.
func Build(v Value, st Store) ([]Command, error) {
	switch v.Type {
	case TypeBulkString, TypeSimpleString:
		text, ok := v.Text()
		if !ok {
			// Null bulk string carries no command.
			return nil, nil
		}
		if cmd, ok := parseLine(text); ok {
			return []Command{cmd}, nil
		}
		// Construction failures on the inline path are dropped,
		// not propagated.
		return nil, nil
	case TypeArray:
		return buildFromArray(v.Array, st)
	default:
		return nil, fmt.Errorf("%w: unsupported top-level value %q", ErrBadCommand, v)
	}
}

// parseLine interprets an inline command: a single space-delimited
// line such as "PING" or "PING hello".
func parseLine(line string) (Command, bool) {
	if line == "" {
		return nil, false
	}
	keyword, payload, hasPayload := strings.Cut(line, " ")
	if !strings.EqualFold(keyword, "PING") {
		return nil, false
	}
	return Ping{Payload: payload, HasPayload: hasPayload}, true
}

// buildFromArray walks the elements with a cursor, matching keywords
// case-insensitively and consuming each command's arguments.
func buildFromArray(elts []Value, st Store) ([]Command, error) {
	var cmds []Command

	i := 0
	// next consumes the following element whether or not it is
	// string-bearing; ok reports a usable text payload.
	next := func() (string, bool) {
		if i >= len(elts) {
			return "", false
		}
		text, ok := elts[i].Text()
		i++
		return text, ok
	}

	for i < len(elts) {
		keyword, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: non-string element in command position", ErrBadCommand)
		}

		switch strings.ToUpper(keyword) {
		case "ECHO":
			if payload, ok := next(); ok {
				cmds = append(cmds, Echo{Payload: payload})
			}
		case "PING":
			var p Ping
			if payload, ok := next(); ok {
				p.Payload, p.HasPayload = payload, true
			}
			cmds = append(cmds, p)
		case "SET":
			key, keyOK := next()
			data, dataOK := next()
			if !keyOK || !dataOK {
				return nil, fmt.Errorf("%w: SET requires a key and a value", ErrBadCommand)
			}
			ttl, hasTTL := parseExpiry(next)
			if hasTTL {
				st.SetWithTTL(key, data, ttl)
			} else {
				st.Set(key, data)
			}
			cmds = append(cmds, Set{})
		case "GET":
			if key, ok := next(); ok {
				data, found := st.Get(key)
				cmds = append(cmds, Get{Data: data, Found: found})
			}
		default:
			// Skipped; the cursor has advanced past the keyword only,
			// so its would-be argument is the next candidate.
		}
	}

	return cmds, nil
}

// parseExpiry consumes an optional "px <milliseconds>" pair. A token
// other than px, or an unparsable count, yields no timer.
func parseExpiry(next func() (string, bool)) (time.Duration, bool) {
	opt, ok := next()
	if !ok || !strings.EqualFold(opt, "px") {
		return 0, false
	}
	raw, ok := next()
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseUint(raw, 10, 63)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}
