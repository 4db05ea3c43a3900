package geo

import "testing"

func TestClassify(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		org  string
		want string
	}{
		{"Amazon.com, Inc.", "AWS"},
		{"GOOGLE-CLOUD", "Google"},
		{"ae-1.r20.sttlwa01.us.bb.gin.ntt.net", "NTT"},
		{"Cloudflare, Inc.", "Cloudflare"},
		{"core1.lon1.he.net", "Hurricane Electric"},
		{"Some Regional ISP", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.org); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.org, got, tt.want)
		}
	}
}

func TestClassifyPrefersEarlierPattern(t *testing.T) {
	c := NewClassifier()
	// Contains both "amazon" and "aws"; the dictionary lists amazon first.
	if got := c.Classify("amazon-aws-gw"); got != "AWS" {
		t.Errorf("Classify = %q, want AWS", got)
	}
}
