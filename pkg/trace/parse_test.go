package trace

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		wantIP  string
		wantIdx int
		wantErr bool
	}{
		{" 1  _gateway (192.168.1.1)  0.512 ms  0.401 ms  0.395 ms", "192.168.1.1", 1, false},
		{" 3  ae-1.r20.sttlwa01.us.bb.gin.ntt.net (129.250.2.59)  12.301 ms  12.1 ms  12.0 ms", "129.250.2.59", 3, false},
		{" 5  129.250.2.59  10.221 ms  10.1 ms  10.3 ms", "129.250.2.59", 5, false},
		{"12  2001:db8::1  44.2 ms  44.0 ms  43.8 ms", "2001:db8::1", 12, false},
		{"traceroute to example.com (93.184.216.34), 30 hops max, 60 byte packets", "", 0, true},
		{"garbage line", "", 0, true},
		{" 7  not-an-ip (999.999.1.1)  1.0 ms", "", 0, true},
	}
	for _, tt := range tests {
		h, err := ParseLine(tt.line)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLine(%q) expected error, got %+v", tt.line, h)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLine(%q) error: %v", tt.line, err)
			continue
		}
		if h.IP != tt.wantIP || h.Index != tt.wantIdx {
			t.Errorf("ParseLine(%q) = hop %d %s, want %d %s", tt.line, h.Index, h.IP, tt.wantIdx, tt.wantIP)
		}
	}
}

func TestParseLineNoReply(t *testing.T) {
	h, err := ParseLine(" 9  * * *")
	if !errors.Is(err, ErrNoReply) {
		t.Fatalf("expected ErrNoReply, got %v", err)
	}
	if h.Index != 9 {
		t.Errorf("silent hop index = %d, want 9", h.Index)
	}
}

func TestHopLocation(t *testing.T) {
	var h Hop
	if _, _, ok := h.Location(); ok {
		t.Error("zero hop reported a location")
	}
	h.Locate(50.043, -5.655)
	lng, lat, ok := h.Location()
	if !ok || lng != -5.655 || lat != 50.043 {
		t.Errorf("Location = (%f, %f, %v)", lng, lat, ok)
	}
}
