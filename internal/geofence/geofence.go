// Package geofence loads named scan areas and tests coordinates against them.
package geofence

import (
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gopkg.in/yaml.v3"
)

// Fence is a single compiled polygon.
type Fence struct {
	Name    string
	polygon orb.Polygon
	bound   orb.Bound
}

// NewFence compiles a polygon from [lat, lon] points.
func NewFence(name string, points [][2]float64) (Fence, error) {
	if len(points) < 3 {
		return Fence{}, fmt.Errorf("fence %q: need at least 3 points, got %d", name, len(points))
	}
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p[1], p[0]})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return Fence{
		Name:    name,
		polygon: orb.Polygon{ring},
		bound:   ring.Bound(),
	}, nil
}

// Contains reports whether the coordinate lies inside the fence.
func (f Fence) Contains(lat, lon float64) bool {
	p := orb.Point{lon, lat}
	if !f.bound.Contains(p) {
		return false
	}
	return planar.PolygonContains(f.polygon, p)
}

// Area is a named scan area made of one or more fences.
type Area struct {
	Name   string
	Fences []Fence
}

// Contains reports whether any fence of the area contains the coordinate.
func (a Area) Contains(lat, lon float64) bool {
	for _, f := range a.Fences {
		if f.Contains(lat, lon) {
			return true
		}
	}
	return false
}

// Set is a collection of areas treated as one exclusion zone.
type Set []Area

// Contains reports whether the coordinate is inside any area of the set.
func (s Set) Contains(lat, lon float64) bool {
	for _, a := range s {
		if a.Contains(lat, lon) {
			return true
		}
	}
	return false
}

// Registry holds all known areas in file order.
type Registry struct {
	areas []Area
}

type fileFormat struct {
	Areas []struct {
		Name   string `yaml:"name"`
		Fences []struct {
			Name   string      `yaml:"name"`
			Points [][]float64 `yaml:"points"`
		} `yaml:"fences"`
	} `yaml:"areas"`
}

// LoadFile reads an area registry from a YAML file.
// An empty path yields an empty registry.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return &Registry{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("read areas file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an area registry from YAML.
func Parse(data []byte) (*Registry, error) {
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("decode areas: %w", err)
	}

	r := &Registry{}
	seen := make(map[string]bool)
	for _, a := range ff.Areas {
		if a.Name == "" {
			return nil, fmt.Errorf("area without name")
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate area %q", a.Name)
		}
		seen[a.Name] = true

		area := Area{Name: a.Name}
		for _, f := range a.Fences {
			points := make([][2]float64, 0, len(f.Points))
			for _, p := range f.Points {
				if len(p) != 2 {
					return nil, fmt.Errorf("area %q fence %q: point must be [lat, lon]", a.Name, f.Name)
				}
				points = append(points, [2]float64{p[0], p[1]})
			}
			fence, err := NewFence(f.Name, points)
			if err != nil {
				return nil, fmt.Errorf("area %q: %w", a.Name, err)
			}
			area.Fences = append(area.Fences, fence)
		}
		r.areas = append(r.areas, area)
	}
	return r, nil
}

// Names returns the names of all known areas.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.areas))
	for _, a := range r.areas {
		names = append(names, a.Name)
	}
	return names
}

// Resolve selects areas by a comma separated list of names.
// A name ending in "*" matches every area with that prefix.
// An area matched by several names appears once per match.
func (r *Registry) Resolve(names string) Set {
	var set Set
	for _, raw := range strings.Split(names, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		for _, a := range r.areas {
			if matchName(name, a.Name) {
				set = append(set, a)
			}
		}
	}
	return set
}

func matchName(pattern, name string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return pattern == name
}
