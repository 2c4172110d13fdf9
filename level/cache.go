package level

import "github.com/gridlock-gg/gridlock/mapdef"

// Geometry holds the render resources derived for one (shape, color) pair.
// Deriving these is the expensive part on the render side, so identical
// objects share one instance.
type Geometry struct {
	Shape mapdef.ShapeType
	Color string
}

type cacheKey struct {
	shape mapdef.ShapeType
	color string
}

// Cache memoizes derived geometry by (shape, color). It is owned by the
// scene that created it: modes whose maps vary per session dispose it on
// exit, while the editor and freeplay keep one for the process lifetime.
type Cache struct {
	entries  map[cacheKey]*Geometry
	disposed bool
}

// NewCache returns an empty geometry cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*Geometry)}
}

// Get returns the shared geometry for the pair, deriving it on first use.
// A disposed cache returns fresh instances without retaining them.
func (c *Cache) Get(shape mapdef.ShapeType, color string) *Geometry {
	if c.disposed {
		return &Geometry{Shape: shape, Color: color}
	}
	key := cacheKey{shape: shape, color: color}
	if g, ok := c.entries[key]; ok {
		return g
	}
	g := &Geometry{Shape: shape, Color: color}
	c.entries[key] = g
	return g
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Dispose drops every cached entry. Safe to call more than once.
func (c *Cache) Dispose() {
	c.entries = nil
	c.disposed = true
}
