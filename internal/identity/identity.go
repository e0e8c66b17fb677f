// Package identity assigns run-unique note identifiers and tracks the
// corpus-wide name→identifier table consulted by the link resolution pass.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh 128-bit random identifier rendered as an upper-case
// UUID string. Identifiers are stable only within a single run: re-running
// the tool regenerates all of them.
func New() string {
	return strings.ToUpper(uuid.NewString())
}

// Table maps note base names to assigned identifiers. It grows monotonically
// during the conversion pass and must be treated as read-only during the
// link resolution pass. One writer, no locking.
type Table struct {
	ids map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{ids: make(map[string]string)}
}

// Register records the identifier assigned to a base name. Registering a
// name twice overwrites the earlier entry and returns false; base names are
// assumed unique across the corpus, so a duplicate is worth surfacing to
// the caller.
func (t *Table) Register(name, id string) bool {
	_, dup := t.ids[name]
	t.ids[name] = id
	return !dup
}

// Lookup returns the identifier registered for name.
func (t *Table) Lookup(name string) (string, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Len returns the number of registered names.
func (t *Table) Len() int {
	return len(t.ids)
}
