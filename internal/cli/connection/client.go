// Package connection provides the RESP client used by respcache-cli.
package connection

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/gohermgo/respcache/internal/server/respserver"
)

// ErrProtocol marks a malformed server reply.
var ErrProtocol = errors.New("connection: protocol error")

// maxReplyLine bounds a reply header or simple-string line.
const maxReplyLine = 4 * 1024

// Reply is one server reply. A null bulk string sets IsNil; server
// error replies are returned as Go errors, not as Reply values.
type Reply struct {
	Text  string
	IsNil bool
}

// Client is a RESP client over a single TCP connection. It is not safe
// for concurrent use.
type Client struct {
	conn    net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	timeout time.Duration
}

// Dial connects to a respcache server. timeout bounds the dial and
// each subsequent request round trip; 0 means no deadline.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:    conn,
		br:      bufio.NewReader(conn),
		bw:      bufio.NewWriter(conn),
		timeout: timeout,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one command as an array of bulk strings and reads one
// reply.
func (c *Client) Do(args ...string) (Reply, error) {
	if len(args) == 0 {
		return Reply{}, fmt.Errorf("%w: empty command", ErrProtocol)
	}

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return Reply{}, err
		}
	}

	elts := make([]respserver.Value, 0, len(args))
	for _, arg := range args {
		elts = append(elts, respserver.BulkString(arg))
	}
	if _, err := c.bw.Write(respserver.Array(elts...).Encode()); err != nil {
		return Reply{}, err
	}
	if err := c.bw.Flush(); err != nil {
		return Reply{}, err
	}

	return c.readReply()
}

// readReply parses one reply. Replies use the server-side grammar plus
// the reply-only simple string and error forms, which the frame
// decoder deliberately does not handle.
func (c *Client) readReply() (Reply, error) {
	line, err := c.readLine()
	if err != nil {
		return Reply{}, err
	}
	if len(line) < 1 {
		return Reply{}, fmt.Errorf("%w: empty reply line", ErrProtocol)
	}

	switch line[0] {
	case '+':
		return Reply{Text: line[1:]}, nil
	case '-':
		return Reply{}, errors.New(line[1:])
	case '$':
		return c.readBulkReply(line[1:])
	default:
		return Reply{}, fmt.Errorf("%w: unexpected reply tag %q", ErrProtocol, line[0])
	}
}

func (c *Client) readBulkReply(header string) (Reply, error) {
	n, err := strconv.Atoi(header)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: bad bulk length %q", ErrProtocol, header)
	}
	if n == -1 {
		return Reply{IsNil: true}, nil
	}
	if n < 0 {
		return Reply{}, fmt.Errorf("%w: bad bulk length %d", ErrProtocol, n)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(c.br, buf); err != nil {
		return Reply{}, err
	}
	if !bytes.HasSuffix(buf, []byte("\r\n")) {
		return Reply{}, fmt.Errorf("%w: bulk reply not CRLF-terminated", ErrProtocol)
	}
	return Reply{Text: string(buf[:n])}, nil
}

func (c *Client) readLine() (string, error) {
	line, err := c.br.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) > maxReplyLine {
		return "", fmt.Errorf("%w: reply line exceeds %d bytes", ErrProtocol, maxReplyLine)
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return line[:len(line)-2], nil
}
