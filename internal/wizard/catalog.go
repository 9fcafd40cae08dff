package wizard

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed venues.yaml
var defaultVenues []byte

// DataCenter is a selectable datacenter and the worlds it hosts.
type DataCenter struct {
	Name   string   `yaml:"name"`
	Region string   `yaml:"region"`
	Worlds []string `yaml:"worlds"`
}

// Catalog lists the venues the wizard offers.
type Catalog struct {
	DataCenters []DataCenter `yaml:"datacenters"`
}

// DefaultCatalog returns the embedded venue catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultVenues))
}

// LoadCatalog parses a YAML venue catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode venue catalog: %w", err)
	}
	if len(c.DataCenters) == 0 {
		return nil, fmt.Errorf("venue catalog has no datacenters")
	}
	seen := make(map[string]bool, len(c.DataCenters))
	for _, dc := range c.DataCenters {
		if dc.Name == "" || len(dc.Worlds) == 0 {
			return nil, fmt.Errorf("datacenter %q needs a name and at least one world", dc.Name)
		}
		if seen[dc.Name] {
			return nil, fmt.Errorf("duplicate datacenter %q", dc.Name)
		}
		seen[dc.Name] = true
	}
	return &c, nil
}

// DataCenter looks up a datacenter by name.
func (c *Catalog) DataCenter(name string) (DataCenter, bool) {
	for _, dc := range c.DataCenters {
		if dc.Name == name {
			return dc, true
		}
	}
	return DataCenter{}, false
}

// HasWorld reports whether world belongs to the named datacenter.
func (c *Catalog) HasWorld(dataCenter, world string) bool {
	dc, ok := c.DataCenter(dataCenter)
	if !ok {
		return false
	}
	for _, w := range dc.Worlds {
		if w == world {
			return true
		}
	}
	return false
}

// Option is one entry of a selector.
type Option struct {
	Label string
	Value string
}

var weekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// DateOptions offers the next n days starting today in now's location.
func DateOptions(now time.Time, n int) []Option {
	out := make([]Option, 0, n)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 0; i < n; i++ {
		d := day.AddDate(0, 0, i)
		out = append(out, Option{
			Label: fmt.Sprintf("%s(%s)", d.Format("01/02"), weekdays[d.Weekday()]),
			Value: d.Format(time.DateOnly),
		})
	}
	return out
}

// HourOptions offers 00 through 23.
func HourOptions() []Option {
	out := make([]Option, 0, 24)
	for h := 0; h < 24; h++ {
		v := fmt.Sprintf("%02d", h)
		out = append(out, Option{Label: v + "時", Value: v})
	}
	return out
}

// MinuteOptions offers quarter-hour marks.
func MinuteOptions() []Option {
	out := make([]Option, 0, 4)
	for _, m := range []string{"00", "15", "30", "45"} {
		out = append(out, Option{Label: m + "分", Value: m})
	}
	return out
}
