package scraper

import (
	"context"
	"io"
	"net"
	"testing"
	"time"
)

func TestDialTLSChrome_SOCKS5SpeaksProxyProtocolFirst(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("stub proxy listen: %v", err)
	}
	defer ln.Close()

	firstByte := make(chan byte, 1)
	go func() {
		conn, acceptErr := ln.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		if _, readErr := io.ReadFull(conn, buf); readErr == nil {
			firstByte <- buf[0]
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// The stub never answers the greeting, so the dial must fail — the
	// assertion is about what reaches the proxy first.
	if _, dialErr := dialTLSChrome(ctx, "tcp", "example.com:443", "socks5://"+ln.Addr().String()); dialErr == nil {
		t.Fatal("dial against a mute proxy should fail")
	}

	select {
	case b := <-firstByte:
		// A TLS record would start with 0x16; a SOCKS5 greeting starts
		// with the version byte.
		if b != 0x05 {
			t.Fatalf("first byte sent to proxy = %#x, want SOCKS5 version 0x05", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("proxy never saw a connection")
	}
}
