package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// DialFunc opens a connection to address over network, honoring ctx
// cancellation. Injectable for testing.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// UDPTransport sends a single UDP datagram and reads a single reply.
type UDPTransport struct {
	timeout time.Duration
	dial    DialFunc
}

// NewUDPTransport constructs a UDPTransport. A zero timeout disables the
// transport's own deadline, deferring entirely to ctx.
func NewUDPTransport(timeout time.Duration, dial DialFunc) *UDPTransport {
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	return &UDPTransport{timeout: timeout, dial: dial}
}

func (t *UDPTransport) Send(ctx context.Context, msg []byte, endpoint Endpoint) ([]byte, error) {
	ctx, cancel := ensureDeadline(ctx, t.timeout)
	if cancel != nil {
		defer cancel()
	}

	conn, err := t.dial(ctx, "udp", net.JoinHostPort(endpoint.IP.String(), portOf(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		if _, err := conn.Write(msg); err != nil {
			done <- result{err: fmt.Errorf("write to %s: %w", endpoint, err)}
			return
		}
		buf := make([]byte, 65535)
		n, err := conn.Read(buf)
		if err != nil {
			done <- result{err: fmt.Errorf("read from %s: %w", endpoint, err)}
			return
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		done <- result{data: out}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TCPTransport sends a message length-prefixed with a 2-octet big-endian
// count, as required for DNS-over-TCP.
type TCPTransport struct {
	timeout time.Duration
	dial    DialFunc
}

// NewTCPTransport constructs a TCPTransport.
func NewTCPTransport(timeout time.Duration, dial DialFunc) *TCPTransport {
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	return &TCPTransport{timeout: timeout, dial: dial}
}

func (t *TCPTransport) Send(ctx context.Context, msg []byte, endpoint Endpoint) ([]byte, error) {
	ctx, cancel := ensureDeadline(ctx, t.timeout)
	if cancel != nil {
		defer cancel()
	}

	conn, err := t.dial(ctx, "tcp", net.JoinHostPort(endpoint.IP.String(), portOf(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		framed := make([]byte, 2+len(msg))
		binary.BigEndian.PutUint16(framed, uint16(len(msg)))
		copy(framed[2:], msg)
		if _, err := conn.Write(framed); err != nil {
			done <- result{err: fmt.Errorf("write to %s: %w", endpoint, err)}
			return
		}

		var lenBuf [2]byte
		if _, err := readFull(conn, lenBuf[:]); err != nil {
			done <- result{err: fmt.Errorf("read length from %s: %w", endpoint, err)}
			return
		}
		size := binary.BigEndian.Uint16(lenBuf[:])
		body := make([]byte, size)
		if _, err := readFull(conn, body); err != nil {
			done <- result{err: fmt.Errorf("read body from %s: %w", endpoint, err)}
			return
		}
		done <- result{data: body}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Composite tries UDP first and falls back to TCP only when the UDP send
// returns an error. It does not inspect response contents: a truncated
// (TC=1) UDP response is returned as is.
type Composite struct {
	UDP *UDPTransport
	TCP *TCPTransport
}

func (c *Composite) Send(ctx context.Context, msg []byte, endpoint Endpoint) ([]byte, error) {
	if c.UDP != nil {
		resp, err := c.UDP.Send(ctx, msg, endpoint)
		if err == nil {
			return resp, nil
		}
		if c.TCP == nil {
			return nil, err
		}
	}
	if c.TCP == nil {
		return nil, fmt.Errorf("no transport configured for %s", endpoint)
	}
	return c.TCP.Send(ctx, msg, endpoint)
}

func ensureDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}

func portOf(e Endpoint) string {
	if e.Port == 0 {
		return "53"
	}
	return fmt.Sprintf("%d", e.Port)
}

var (
	_ Transport = (*UDPTransport)(nil)
	_ Transport = (*TCPTransport)(nil)
	_ Transport = (*Composite)(nil)
)
