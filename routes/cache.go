package routes

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Cache stores the static stop/route dataset in memory for fast lookups
type Cache struct {
	stops  map[string]Stop
	routes map[string]Route
	lines  []string
}

// Load reads the static dataset from path and builds the lookup maps.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static dataset: %w", err)
	}
	return Parse(data)
}

// Parse builds a cache from raw dataset bytes.
func Parse(data []byte) (*Cache, error) {
	var ds dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse static dataset: %w", err)
	}
	if len(ds.Routes) == 0 {
		return nil, fmt.Errorf("static dataset contains no routes")
	}
	c := &Cache{
		stops:  map[string]Stop{},
		routes: map[string]Route{},
	}
	for _, dr := range ds.Routes {
		r := Route{
			Line:    dr.Line,
			Color:   dr.Color,
			Pattern: dr.Pattern,
			Stops:   make([]Stop, 0, len(dr.Stops)),
		}
		for _, st := range dr.Stops {
			s := Stop{
				ID:        st.ID,
				Name:      st.Name,
				Line:      dr.Line,
				Latitude:  st.Latitude,
				Longitude: st.Longitude,
			}
			r.Stops = append(r.Stops, s)
			if _, exists := c.stops[s.ID]; !exists {
				c.stops[s.ID] = s
			}
		}
		c.routes[dr.Line] = r
		c.lines = append(c.lines, dr.Line)
	}
	sort.Strings(c.lines)
	return c, nil
}

// Lookup returns the stop with the given id, if present.
// Stop ids are opaque strings; existence is the only validation performed.
func (c *Cache) Lookup(stopID string) (Stop, bool) {
	s, ok := c.stops[stopID]
	return s, ok
}

// Route returns the route for a line id, if known.
func (c *Cache) Route(line string) (Route, bool) {
	r, ok := c.routes[line]
	return r, ok
}

// Lines returns the known line ids in sorted order.
func (c *Cache) Lines() []string {
	return append([]string(nil), c.lines...)
}

// HasLine reports whether line is in the known line set.
func (c *Cache) HasLine(line string) bool {
	_, ok := c.routes[line]
	return ok
}

// StopCount returns the number of distinct stops in the dataset.
func (c *Cache) StopCount() int {
	return len(c.stops)
}

// StopIDs returns every stop id in the dataset, unordered.
func (c *Cache) StopIDs() []string {
	ids := make([]string, 0, len(c.stops))
	for id := range c.stops {
		ids = append(ids, id)
	}
	return ids
}
