package compendium

import (
	"sort"
	"strings"

	"github.com/stgreenb/FSF/internal/utils"
)

// Catalog indexes entries by dsid, by Foundry _id and by source-id flag.
// It is populated once per run and read-only afterwards.
type Catalog struct {
	byDSID     map[string]*Entry
	byID       map[string]*Entry
	bySourceID map[string]*Entry

	sorted []string // dsids in sorted order, rebuilt lazily
	dirty  bool
}

func NewCatalog() *Catalog {
	return &Catalog{
		byDSID:     make(map[string]*Entry),
		byID:       make(map[string]*Entry),
		bySourceID: make(map[string]*Entry),
	}
}

// Add inserts an entry. When two entries share a dsid, the standard
// (non-heroic) variant wins over the heroic one; otherwise first in stays.
func (c *Catalog) Add(e *Entry) {
	if e == nil {
		return
	}
	if existing, ok := c.byDSID[e.DSID]; ok {
		if existing.Category == "heroic" && e.Category != "heroic" {
			utils.Log.Debugf("duplicate %s: preferring %s (standard) over heroic", e.DSID, e.Name)
			c.remove(existing)
		} else {
			return
		}
	}
	c.byDSID[e.DSID] = e
	if e.ID != "" {
		c.byID[e.ID] = e
	}
	if sid := e.SourceID(); sid != "" {
		c.bySourceID[sid] = e
	}
	c.dirty = true
}

func (c *Catalog) remove(e *Entry) {
	delete(c.byDSID, e.DSID)
	if e.ID != "" {
		delete(c.byID, e.ID)
	}
	if sid := e.SourceID(); sid != "" {
		delete(c.bySourceID, sid)
	}
	c.dirty = true
}

func (c *Catalog) Len() int { return len(c.byDSID) }

// Get looks up an entry by its dsid.
func (c *Catalog) Get(dsid string) *Entry { return c.byDSID[dsid] }

// ResolvePoolRef resolves an itemGrant pool reference. Pool entries carry a
// full Foundry uuid whose last segment is the target _id; some packs instead
// record the uuid in the granted item's source-id flag.
func (c *Catalog) ResolvePoolRef(uuid string) *Entry {
	if uuid == "" {
		return nil
	}
	parts := strings.Split(uuid, ".")
	tail := parts[len(parts)-1]
	if e, ok := c.byID[tail]; ok {
		return e
	}
	if e, ok := c.bySourceID[uuid]; ok {
		return e
	}
	return nil
}

// Entries returns all entries in sorted dsid order. Matching walks this
// slice so that loose-match ties break deterministically.
func (c *Catalog) Entries() []*Entry {
	if c.dirty || c.sorted == nil {
		c.sorted = make([]string, 0, len(c.byDSID))
		for dsid := range c.byDSID {
			c.sorted = append(c.sorted, dsid)
		}
		sort.Strings(c.sorted)
		c.dirty = false
	}
	out := make([]*Entry, 0, len(c.sorted))
	for _, dsid := range c.sorted {
		out = append(out, c.byDSID[dsid])
	}
	return out
}
