package utils

import (
	"encoding/json"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// GeoLocation is the cached enrichment result for one hop address.
type GeoLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
	Org     string  `json:"org,omitempty"`
}

// GeoCache is a badger-backed IP-to-location cache with an in-memory hot
// layer, so repeated traces against the same path do not re-query the geo
// database for every hop.
type GeoCache struct {
	db  *badger.DB
	hot sync.Map
}

func OpenGeoCache(path string) (*GeoCache, error) {
	opts := badger.DefaultOptions(path)
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &GeoCache{db: db}, nil
}

func (c *GeoCache) Close() error {
	return c.db.Close()
}

// Get returns the cached location for ip, or ok=false when the address has
// never been resolved.
func (c *GeoCache) Get(ip string) (GeoLocation, bool) {
	if v, ok := c.hot.Load(ip); ok {
		return v.(GeoLocation), true
	}

	var loc GeoLocation
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ip))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &loc)
		})
	})
	if err != nil {
		return GeoLocation{}, false
	}
	c.hot.Store(ip, loc)
	return loc, true
}

// Put stores the location for ip in both layers.
func (c *GeoCache) Put(ip string, loc GeoLocation) error {
	c.hot.Store(ip, loc)
	raw, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ip), raw)
	})
}

// Len counts persisted entries. Used by diagnostics only.
func (c *GeoCache) Len() (int, error) {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
