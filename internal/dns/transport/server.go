package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/lucaspiller/dnsd/internal/dns/common/log"
)

// maxUDPMessageSize is the practical upper bound for a single UDP datagram
// this server will read; RFC 1035 mandates 512-octet UDP messages absent
// EDNS0, but a generous buffer costs nothing on read.
const maxUDPMessageSize = 4096

// UDPServerTransport implements ServerTransport over UDP: it binds a single
// socket and dispatches each inbound datagram to the handler on its own
// goroutine.
type UDPServerTransport struct {
	addr   string
	logger log.Logger

	mu      sync.RWMutex
	conn    *net.UDPConn
	running bool
	stopCh  chan struct{}
}

// NewUDPServerTransport constructs a UDPServerTransport bound to addr once
// Start is called.
func NewUDPServerTransport(addr string, logger log.Logger) *UDPServerTransport {
	return &UDPServerTransport{addr: addr, logger: logger, stopCh: make(chan struct{})}
}

func (t *UDPServerTransport) Start(ctx context.Context, handler Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return fmt.Errorf("UDP server transport already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return fmt.Errorf("resolve UDP address %s: %w", t.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("bind UDP socket on %s: %w", t.addr, err)
	}

	t.conn = conn
	t.running = true
	t.logger.Info(map[string]any{"transport": "udp", "address": t.addr}, "server transport started")

	go t.listenLoop(ctx, handler)
	return nil
}

func (t *UDPServerTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return nil
	}
	close(t.stopCh)
	err := t.conn.Close()
	t.running = false
	t.logger.Info(map[string]any{"transport": "udp", "address": t.addr}, "server transport stopped")
	return err
}

func (t *UDPServerTransport) Address() string { return t.addr }

func (t *UDPServerTransport) listenLoop(ctx context.Context, handler Handler) {
	buf := make([]byte, maxUDPMessageSize)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		default:
		}

		n, clientAddr, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			t.mu.RLock()
			running := t.running
			t.mu.RUnlock()
			if !running {
				return
			}
			t.logger.Warn(map[string]any{"error": err.Error()}, "failed to read UDP packet")
			continue
		}

		packet := make([]byte, n)
		copy(packet, buf[:n])
		go t.handlePacket(ctx, packet, clientAddr, handler)
	}
}

func (t *UDPServerTransport) handlePacket(ctx context.Context, data []byte, clientAddr *net.UDPAddr, handler Handler) {
	resp, ok := handler.Handle(ctx, data, clientAddr)
	if !ok {
		t.logger.Debug(map[string]any{"client": clientAddr.String()}, "dropped undecodable packet")
		return
	}
	if _, err := t.conn.WriteToUDP(resp, clientAddr); err != nil {
		t.logger.Error(map[string]any{"client": clientAddr.String(), "error": err.Error()}, "failed to send response")
	}
}

var _ ServerTransport = (*UDPServerTransport)(nil)
