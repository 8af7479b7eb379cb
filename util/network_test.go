package util

import (
	"net"
	"testing"
)

func TestResolveAddr(t *testing.T) {
	tests := []struct {
		network string
		address string
		noDNS   bool
		want    string
		wantErr bool
	}{
		{"tcp", "127.0.0.1:80", true, "127.0.0.1:80", false},
		{"tcp", "[::1]:443", true, "[::1]:443", false},
		{"udp", "127.0.0.1:53", false, "127.0.0.1:53", false},
		{"tcp", "localhost:80", true, "", true}, // hostname with noDNS
		{"tcp", "127.0.0.1", false, "", true},   // missing port
		{"tcp", ":80", false, "", true},         // missing host
		{"sctp", "127.0.0.1:80", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.network+" "+tt.address, func(t *testing.T) {
			got, err := ResolveAddr(tt.network, tt.address, tt.noDNS)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveAddr(%q,%q,%v) err=%v wantErr=%v",
					tt.network, tt.address, tt.noDNS, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
			if got.Network() != tt.network {
				t.Errorf("network = %q, want %q", got.Network(), tt.network)
			}
		})
	}
}

func TestAddrIPPort(t *testing.T) {
	ip, port, err := AddrIPPort(&net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 9})
	if err != nil {
		t.Fatal(err)
	}
	if !ip.Equal(net.IPv4(10, 0, 0, 1)) || port != 9 {
		t.Errorf("got %v:%d", ip, port)
	}

	if _, _, err := AddrIPPort(&net.UnixAddr{Name: "/tmp/x", Net: "unix"}); err == nil {
		t.Error("expected error for unix address")
	}
}

func TestFormatAddr(t *testing.T) {
	if got := FormatAddr("1.2.3.4", 22); got != "1.2.3.4:22" {
		t.Errorf("got %q, want %q", got, "1.2.3.4:22")
	}
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort()
	if err != nil {
		t.Fatal(err)
	}
	if port < 1 || port > 65535 {
		t.Errorf("port %d out of range", port)
	}
}
