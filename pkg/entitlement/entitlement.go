package entitlement

import (
	"sort"
	"strings"
)

// Entitlements are opaque scope strings compared by exact match. There is no
// hierarchy and no wildcard expansion.
const (
	// Base must be present for a login to succeed at all.
	Base = "konsum"

	CategoryAdd    = "konsum.category.add"
	CategoryDelete = "konsum.category.delete"

	ValueAdd    = "konsum.value.add"
	ValueDelete = "konsum.value.delete"

	MeterAdd    = "konsum.meter.add"
	MeterModify = "konsum.meter.modify"
	MeterDelete = "konsum.meter.delete"

	NoteAdd    = "konsum.note.add"
	NoteModify = "konsum.note.modify"
	NoteDelete = "konsum.note.delete"

	AdminStop   = "konsum.admin.stop"
	AdminReload = "konsum.admin.reload"
	AdminBackup = "konsum.admin.backup"
)

// Set is an unordered collection of entitlement names.
type Set map[string]struct{}

func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		if name != "" {
			s[name] = struct{}{}
		}
	}
	return s
}

// ParseSet decodes the comma-joined claim representation.
func ParseSet(joined string) Set {
	if joined == "" {
		return Set{}
	}
	return NewSet(strings.Split(joined, ",")...)
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in a stable order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Join encodes the set for transport inside a token claim.
func (s Set) Join() string {
	return strings.Join(s.Names(), ",")
}
