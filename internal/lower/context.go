package lower

import (
	"maps"
	"slices"
	"sync"

	"github.com/roach88/groqgen/internal/tstype"
)

// Alias is one named type of the reference table.
type Alias struct {
	Name string
	Type tstype.Type
}

// Context is the reference table of one generation run. It maps alias names
// to lowered types and is shared by every query lowered in the run.
//
// Thread-safety: All methods are safe for concurrent use. Reservation is an
// atomic insert-if-absent, so two queries lowering the same lazy shape at the
// same time produce exactly one alias.
type Context struct {
	mu      sync.Mutex
	aliases map[string]tstype.Type
}

// NewContext returns an empty reference table.
func NewContext() *Context {
	return &Context{aliases: make(map[string]tstype.Type)}
}

// reserve claims name for the caller. It reports false when the name is
// already reserved or filled.
func (c *Context) reserve(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.aliases[name]; ok {
		return false
	}
	c.aliases[name] = nil
	return true
}

func (c *Context) fill(name string, t tstype.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[name] = t
}

// References returns the completed aliases sorted by name.
func (c *Context) References() []Alias {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Alias, 0, len(c.aliases))
	for _, name := range slices.Sorted(maps.Keys(c.aliases)) {
		if t := c.aliases[name]; t != nil {
			out = append(out, Alias{Name: name, Type: t})
		}
	}
	return out
}
