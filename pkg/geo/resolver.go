// Package geo enriches hop addresses with approximate geolocation using a
// local MaxMind database, fronted by a persistent cache.
package geo

import (
	"fmt"
	"log"
	"net"

	"github.com/oschwald/maxminddb-golang"

	"github.com/jaintle/tracepath/pkg/trace"
	"github.com/jaintle/tracepath/pkg/utils"
)

type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
	Traits struct {
		ISP          string `maxminddb:"isp"`
		Organization string `maxminddb:"organization"`
	} `maxminddb:"traits"`
}

// Resolver looks hop addresses up in a MaxMind city database. The cache is
// optional; with one attached, repeat lookups never touch the database.
type Resolver struct {
	reader     *maxminddb.Reader
	cache      *utils.GeoCache
	classifier *Classifier
}

func NewResolver(mmdbPath string, cache *utils.GeoCache) (*Resolver, error) {
	reader, err := maxminddb.Open(mmdbPath)
	if err != nil {
		return nil, fmt.Errorf("open geo database: %w", err)
	}
	return &Resolver{reader: reader, cache: cache, classifier: NewClassifier()}, nil
}

func (r *Resolver) Close() error {
	return r.reader.Close()
}

// Enrich fills the hop's geolocation fields in place. Private and unparseable
// addresses are left untouched; that is not an error, the hop simply stays
// unlocated and the planner skips it.
func (r *Resolver) Enrich(h *trace.Hop) {
	ip := net.ParseIP(h.IP)
	if ip == nil || !ip.IsGlobalUnicast() || ip.IsPrivate() {
		return
	}

	if r.cache != nil {
		if loc, ok := r.cache.Get(h.IP); ok {
			applyLocation(h, loc)
			return
		}
	}

	var rec cityRecord
	if err := r.reader.Lookup(ip, &rec); err != nil {
		return
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 && rec.Country.ISOCode == "" {
		return
	}

	loc := utils.GeoLocation{
		Lat:     rec.Location.Latitude,
		Lng:     rec.Location.Longitude,
		City:    rec.City.Names["en"],
		Country: rec.Country.ISOCode,
		Org:     rec.Traits.Organization,
	}
	if loc.Org == "" {
		loc.Org = rec.Traits.ISP
	}
	if loc.Org == "" {
		loc.Org = h.Org // keep the reverse-DNS name from the probe
	}

	if r.cache != nil {
		if err := r.cache.Put(h.IP, loc); err != nil {
			log.Printf("Warning: geo cache write failed for %s: %v", h.IP, err)
		}
	}
	applyLocation(h, loc)
}

// Classify tags the hop's org string with a provider label, when known.
func (r *Resolver) Classify(h trace.Hop) string {
	return r.classifier.Classify(h.Org)
}

func applyLocation(h *trace.Hop, loc utils.GeoLocation) {
	if loc.Lat != 0 || loc.Lng != 0 {
		h.Locate(loc.Lat, loc.Lng)
	}
	if h.City == "" {
		h.City = loc.City
	}
	if h.Country == "" {
		h.Country = loc.Country
	}
	if loc.Org != "" {
		h.Org = loc.Org
	}
}
