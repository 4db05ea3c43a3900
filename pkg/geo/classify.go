package geo

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// providerPatterns maps lowercase substrings of org/rDNS names to a display
// label. Order matters: the first pattern that matches wins, so put the more
// specific ones first.
var providerPatterns = []struct {
	Pattern string
	Label   string
}{
	{"amazon", "AWS"},
	{"aws", "AWS"},
	{"google", "Google"},
	{"gstatic", "Google"},
	{"microsoft", "Azure"},
	{"azure", "Azure"},
	{"cloudflare", "Cloudflare"},
	{"akamai", "Akamai"},
	{"fastly", "Fastly"},
	{"ntt", "NTT"},
	{"gin.ntt.net", "NTT"},
	{"level3", "Lumen"},
	{"lumen", "Lumen"},
	{"centurylink", "Lumen"},
	{"cogent", "Cogent"},
	{"telia", "Arelion"},
	{"arelion", "Arelion"},
	{"zayo", "Zayo"},
	{"tata", "Tata"},
	{"hurricane", "Hurricane Electric"},
	{"he.net", "Hurricane Electric"},
	{"gtt", "GTT"},
	{"orange", "Orange"},
	{"vodafone", "Vodafone"},
	{"comcast", "Comcast"},
	{"telstra", "Telstra"},
}

// Classifier matches hop org strings against the provider dictionary using
// Aho-Corasick, so one pass over the string checks every pattern.
type Classifier struct {
	matcher *ahocorasick.Matcher
	labels  []string
}

func NewClassifier() *Classifier {
	dict := make([]string, len(providerPatterns))
	labels := make([]string, len(providerPatterns))
	for i, p := range providerPatterns {
		dict[i] = p.Pattern
		labels[i] = p.Label
	}
	return &Classifier{matcher: ahocorasick.NewStringMatcher(dict), labels: labels}
}

// Classify returns the provider label for an org or reverse-DNS string, or ""
// when nothing matches.
func (c *Classifier) Classify(org string) string {
	if org == "" {
		return ""
	}
	hits := c.matcher.Match([]byte(strings.ToLower(org)))
	if len(hits) == 0 {
		return ""
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h < best {
			best = h
		}
	}
	return c.labels[best]
}
