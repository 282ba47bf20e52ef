package builder

import (
	"strings"

	"github.com/sabinadams/aurora/pkg/schema"
)

// Key addresses a declaration, or a member of one, in the provenance index.
type Key struct {
	Kind   schema.Kind
	Name   string
	Member string
}

// Path renders the key as "kind.name[.member]".
func (k Key) Path() string {
	parts := []string{string(k.Kind), k.Name}
	if k.Member != "" {
		parts = append(parts, k.Member)
	}
	return strings.Join(parts, ".")
}

// Provenance maps declarations and their members to the origin of the
// fragment that first introduced them. It is only used for diagnostics.
type Provenance struct {
	origins map[Key]string
	order   []Key
}

func newProvenance() *Provenance {
	return &Provenance{origins: make(map[Key]string)}
}

// record stores origin for key unless the key is already known. It reports
// whether the key was new.
func (p *Provenance) record(key Key, origin string) bool {
	if _, ok := p.origins[key]; ok {
		return false
	}
	p.origins[key] = origin
	p.order = append(p.order, key)
	return true
}

// Origin returns the first origin recorded for key.
func (p *Provenance) Origin(key Key) (string, bool) {
	origin, ok := p.origins[key]
	return origin, ok
}

// Has reports whether key has been recorded.
func (p *Provenance) Has(key Key) bool {
	_, ok := p.origins[key]
	return ok
}

// Keys returns every recorded key in the order it was first seen.
func (p *Provenance) Keys() []Key {
	out := make([]Key, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of recorded keys.
func (p *Provenance) Len() int {
	return len(p.order)
}
