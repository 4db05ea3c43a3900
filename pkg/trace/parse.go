package trace

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoReply marks a hop line where every probe timed out ("* * *"). The hop
// index is still valid; there is just nothing to geolocate.
var ErrNoReply = errors.New("no reply from hop")

var (
	// " 3  ae-1.r20.sttlwa01.us.bb.gin.ntt.net (129.250.2.59)  12.3 ms ..."
	hostLine = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+\(([0-9a-fA-F:.]+)\)\s+([\d.]+)\s*ms`)
	// " 3  129.250.2.59  12.3 ms ..." (traceroute -n)
	bareLine = regexp.MustCompile(`^\s*(\d+)\s+([0-9a-fA-F:.]+)\s+([\d.]+)\s*ms`)
	starLine = regexp.MustCompile(`^\s*(\d+)\s+\*`)
)

// ParseLine parses one line of traceroute output into a Hop. The header line
// and unparseable records return an error; callers drop those with a warning
// and keep the stream going.
func ParseLine(line string) (Hop, error) {
	if m := hostLine.FindStringSubmatch(line); m != nil {
		idx, _ := strconv.Atoi(m[1])
		rtt, _ := strconv.ParseFloat(m[4], 64)
		if net.ParseIP(m[3]) == nil {
			return Hop{}, fmt.Errorf("bad hop address %q", m[3])
		}
		h := Hop{Index: idx, IP: m[3], RTTms: rtt}
		if m[2] != m[3] {
			h.Org = m[2] // reverse DNS name, refined later by enrichment
		}
		return h, nil
	}
	if m := bareLine.FindStringSubmatch(line); m != nil {
		idx, _ := strconv.Atoi(m[1])
		rtt, _ := strconv.ParseFloat(m[3], 64)
		if net.ParseIP(m[2]) == nil {
			return Hop{}, fmt.Errorf("bad hop address %q", m[2])
		}
		return Hop{Index: idx, IP: m[2], RTTms: rtt}, nil
	}
	if m := starLine.FindStringSubmatch(line); m != nil {
		idx, _ := strconv.Atoi(m[1])
		return Hop{Index: idx}, ErrNoReply
	}
	if strings.HasPrefix(strings.TrimSpace(line), "traceroute") {
		return Hop{}, fmt.Errorf("header line")
	}
	return Hop{}, fmt.Errorf("unrecognized traceroute line %q", strings.TrimSpace(line))
}
