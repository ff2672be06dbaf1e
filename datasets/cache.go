package datasets

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes the loaded datasets for the life of the process. A failed
// load is not remembered, so the next call retries it.
type Cache struct {
	paths      Paths
	seriesPath string

	group singleflight.Group

	mu        sync.RWMutex
	districts *DistrictTables
	series    *Table
}

// NewCache returns an empty cache for the given sources.
func NewCache(paths Paths, seriesPath string) *Cache {
	return &Cache{paths: paths, seriesPath: seriesPath}
}

// Districts returns the district tables, loading them on first use.
func (c *Cache) Districts() (*DistrictTables, error) {
	c.mu.RLock()
	d := c.districts
	c.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	v, err, _ := c.group.Do("districts", func() (interface{}, error) {
		loaded, err := Load(c.paths)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.districts = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DistrictTables), nil
}

// Series returns the fab cost table, loading it on first use.
func (c *Cache) Series() (*Table, error) {
	c.mu.RLock()
	s := c.series
	c.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	v, err, _ := c.group.Do("series", func() (interface{}, error) {
		loaded, err := LoadSeries(c.seriesPath)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.series = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Clear drops every memoized dataset.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.districts = nil
	c.series = nil
	c.mu.Unlock()
	log.Info("dataset cache cleared")
}
