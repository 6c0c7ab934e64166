package extract

import "testing"

func TestFromCorpusJoined(t *testing.T) {
	tests := []struct {
		name   string
		corpus string
		want   string
	}{
		{"plain colon", "IP address & Port 192.168.0.17:40123", "192.168.0.17:40123"},
		{"spaced colon", "address 10.0.0.5 : 5555", "10.0.0.5:5555"},
		{"fullwidth colon", "IP地址与端口 192.168.1.8：37099", "192.168.1.8:37099"},
		{"whitespace joined", "pair with 172.16.4.2 39321", "172.16.4.2:39321"},
		{"embedded in noise", "Wireless debugging enabled 192.168.50.3:41001 tap to pair", "192.168.50.3:41001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := FromCorpus(tt.corpus, Options{})
			if !ok {
				t.Fatalf("no candidate found in %q", tt.corpus)
			}
			if c.String() != tt.want {
				t.Errorf("got %s, want %s", c.String(), tt.want)
			}
		})
	}
}

func TestFromCorpusSeparated(t *testing.T) {
	// Host and port labelled apart, CJK text between them. The joined
	// patterns cannot match here, so the token pairing path must.
	c, ok := FromCorpus("IP地址 192.168.1.23 端口 47321 其他文字", Options{})
	if !ok {
		t.Fatal("no candidate found")
	}
	if c.Host != "192.168.1.23" || c.Port != 47321 {
		t.Errorf("got %s, want 192.168.1.23:47321", c.String())
	}
}

func TestJoinedTakesPrecedence(t *testing.T) {
	// A joined pair earlier in the corpus wins over separated tokens that
	// would pair differently.
	corpus := "10.0.0.5:5555 and also host 192.168.9.9 port 40000"
	c, ok := FromCorpus(corpus, Options{})
	if !ok {
		t.Fatal("no candidate found")
	}
	if c.String() != "10.0.0.5:5555" {
		t.Errorf("got %s, want 10.0.0.5:5555", c.String())
	}
}

func TestFromCorpusNone(t *testing.T) {
	tests := []struct {
		name   string
		corpus string
	}{
		{"empty", ""},
		{"host only", "device address 192.168.1.50 no port shown"},
		{"port only", "listening on 40123"},
		{"octet out of range", "300.1.2.3:40123"},
		{"port too short", "192.168.1.2:443"},
		{"prose", "Wireless debugging lets you debug over Wi-Fi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c, ok := FromCorpus(tt.corpus, Options{}); ok {
				t.Errorf("unexpected candidate %s", c.String())
			}
		})
	}
}

func TestTokenBoundaries(t *testing.T) {
	// Hosts and ports must be whole tokens, never slices of a longer digit
	// run.
	tests := []struct {
		name   string
		corpus string
	}{
		{"port inside longer number", "uptime 192.168.1.2:123456 seconds"},
		{"host glued to leading digits", "id 3192.168.1.2:40123"},
		{"port with trailing digits", "192.168.1.23:4032112"},
		{"separated host glued to digits", "serial 9192.168.1.2 port 40321"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c, ok := FromCorpus(tt.corpus, Options{}); ok {
				t.Errorf("unexpected candidate %s", c.String())
			}
		})
	}

	// Punctuation still counts as a boundary.
	c, ok := FromCorpus("(192.168.1.2:40000)", Options{})
	if !ok || c.String() != "192.168.1.2:40000" {
		t.Errorf("paren-wrapped pair: got %v %v", c, ok)
	}
}

func TestPortWindow(t *testing.T) {
	if _, ok := FromCorpus("192.168.1.2:70000", Options{}); ok {
		t.Error("port above 65535 accepted")
	}
	if _, ok := FromCorpus("192.168.1.2:40000", Options{MinPort: 41000}); ok {
		t.Error("port below MinPort accepted")
	}
	c, ok := FromCorpus("192.168.1.2:40000", Options{MinPort: 40000, MaxPort: 40000})
	if !ok || c.Port != 40000 {
		t.Error("inclusive bounds rejected an in-range port")
	}
}

func TestPrivateOnly(t *testing.T) {
	opts := Options{PrivateOnly: true}
	if _, ok := FromCorpus("8.8.8.8:40123", opts); ok {
		t.Error("public host accepted with PrivateOnly")
	}
	if _, ok := FromCorpus("192.168.1.2:40123", opts); !ok {
		t.Error("private host rejected with PrivateOnly")
	}
	// With a public pair and a private pair present, the private one wins.
	c, ok := FromCorpus("8.8.8.8:40123 192.168.1.2:40999", opts)
	if !ok || c.Host != "192.168.1.2" {
		t.Errorf("got %v, want the private host", c)
	}
}

func TestHasAddress(t *testing.T) {
	if !HasAddress("192.168.1.2:40123", Options{}) {
		t.Error("joined pair not detected")
	}
	// The separated path must not feed HasAddress: it is too permissive
	// for a mere presence signal.
	if HasAddress("host 192.168.1.2 port 40123", Options{}) {
		t.Error("separated tokens should not count as a visible address")
	}
}

func TestValidHost(t *testing.T) {
	tests := []struct {
		host string
		ok   bool
	}{
		{"192.168.1.1", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"::1", false},
	}
	for _, tt := range tests {
		if got := ValidHost(tt.host, Options{}); got != tt.ok {
			t.Errorf("ValidHost(%q) = %v, want %v", tt.host, got, tt.ok)
		}
	}
}
