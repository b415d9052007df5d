package transport

import (
	"context"
	"net"
	"testing"
	"time"
)

func echoUDPServer(t *testing.T) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 512)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			echoed := append([]byte{0xFF}, buf[:n]...)
			conn.WriteToUDP(echoed, addr)
		}
	}()
	return conn.LocalAddr().(*net.UDPAddr)
}

func TestUDPTransportSendReceive(t *testing.T) {
	addr := echoUDPServer(t)
	tr := NewUDPTransport(2*time.Second, nil)

	resp, err := tr.Send(context.Background(), []byte("query"), Endpoint{IP: addr.IP, Port: addr.Port, Proto: ProtoUDP})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(resp) != "\xffquery" {
		t.Errorf("resp = %q, want echoed payload", resp)
	}
}

func TestUDPTransportContextCancellation(t *testing.T) {
	tr := NewUDPTransport(2*time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Send(ctx, []byte("query"), Endpoint{IP: net.ParseIP("192.0.2.1"), Port: 53})
	if err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func echoTCPServer(t *testing.T) *net.TCPAddr {
	t.Helper()
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("ListenTCP: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				var lenBuf [2]byte
				if _, err := readFull(c, lenBuf[:]); err != nil {
					return
				}
				size := int(lenBuf[0])<<8 | int(lenBuf[1])
				body := make([]byte, size)
				if _, err := readFull(c, body); err != nil {
					return
				}
				framed := make([]byte, 2+len(body))
				framed[0], framed[1] = byte(len(body)>>8), byte(len(body))
				copy(framed[2:], body)
				c.Write(framed)
			}(conn)
		}
	}()
	return ln.Addr().(*net.TCPAddr)
}

func TestTCPTransportLengthPrefixedRoundTrip(t *testing.T) {
	addr := echoTCPServer(t)
	tr := NewTCPTransport(2*time.Second, nil)

	resp, err := tr.Send(context.Background(), []byte("hello-tcp"), Endpoint{IP: addr.IP, Port: addr.Port, Proto: ProtoTCP})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(resp) != "hello-tcp" {
		t.Errorf("resp = %q, want hello-tcp", resp)
	}
}
