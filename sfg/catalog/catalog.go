package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Catalog holds classified entries and their resolved links.
type Catalog struct {
	order      []*Entry
	byRole     map[Role][]*Entry
	byName     map[string]*Entry
	background map[string]*Entry
	reference  map[string]*Entry
}

// Build classifies filenames with the default rules and resolves every
// background and reference link. It returns nil and the first error if any
// filename is malformed or any link cannot be resolved.
func Build(filenames []string) (*Catalog, error) {
	c, err := Classify(filenames)
	if err != nil {
		return nil, err
	}
	if err := c.MatchBackgrounds(); err != nil {
		return nil, err
	}
	if err := c.MatchReferences(); err != nil {
		return nil, err
	}
	return c, nil
}

// Classify parses filenames with [DefaultRules].
func Classify(filenames []string) (*Catalog, error) {
	return ClassifyWith(DefaultRules(), filenames)
}

// ClassifyWith parses filenames with rules. Entries keep discovery order
// within each role. Duplicate filenames are rejected.
func ClassifyWith(rules []Rule, filenames []string) (*Catalog, error) {
	c := &Catalog{
		byRole:     make(map[Role][]*Entry),
		byName:     make(map[string]*Entry, len(filenames)),
		background: make(map[string]*Entry),
		reference:  make(map[string]*Entry),
	}

	for _, name := range filenames {
		e, err := Parse(rules, name)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byName[e.Filename]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateFilename, e.Filename)
		}

		entry := &e
		c.order = append(c.order, entry)
		c.byRole[e.Role] = append(c.byRole[e.Role], entry)
		c.byName[e.Filename] = entry
	}

	return c, nil
}

// MatchBackgrounds links every non-background entry to its background.
// Links are committed only when every entry resolves.
func (c *Catalog) MatchBackgrounds() error {
	links := make(map[string]*Entry, len(c.order))

	for _, e := range c.order {
		if !e.IsSignal() {
			continue
		}
		bg := selectBackground(e, c.byRole[RoleBackground])
		if bg == nil {
			return fmt.Errorf("%w for %q (name=%s pol=%s exposure=%s)",
				ErrUnmatchedBackground, e.Filename, e.Name, e.Polarization, e.Exposure)
		}
		links[e.Filename] = bg
	}

	c.background = links
	return nil
}

// MatchReferences links every sample entry to its reference.
// Links are committed only when every sample resolves.
func (c *Catalog) MatchReferences() error {
	links := make(map[string]*Entry, len(c.byRole[RoleSample]))

	for _, e := range c.byRole[RoleSample] {
		ref := selectReference(e, c.byRole[RoleReference])
		if ref == nil {
			return fmt.Errorf("%w for %q", ErrUnmatchedReference, e.Filename)
		}
		links[e.Filename] = ref
	}

	c.reference = links
	return nil
}

// selectBackground returns the background with the same name, polarization
// and exposure as e. A background with the same index wins, otherwise the
// highest index.
func selectBackground(e *Entry, candidates []*Entry) *Entry {
	var best *Entry
	for _, bg := range candidates {
		if bg.Name != e.Name || bg.Polarization != e.Polarization || bg.Exposure != e.Exposure {
			continue
		}
		if bg.Index == e.Index {
			return bg
		}
		if best == nil || compareIndex(bg.Index, best.Index) > 0 {
			best = bg
		}
	}
	return best
}

// selectReference ranks every reference by matching polarization, then
// matching exposure, then highest index.
func selectReference(e *Entry, candidates []*Entry) *Entry {
	score := func(r *Entry) int {
		s := 0
		if r.Polarization == e.Polarization {
			s += 2
		}
		if r.Exposure == e.Exposure {
			s++
		}
		return s
	}

	var best *Entry
	bestScore := -1
	for _, ref := range candidates {
		s := score(ref)
		if s > bestScore || (s == bestScore && compareIndex(ref.Index, best.Index) > 0) {
			best, bestScore = ref, s
		}
	}
	return best
}

// Entries returns the entries of role in discovery order.
func (c *Catalog) Entries(role Role) []*Entry {
	return c.byRole[role]
}

// All returns every entry in discovery order.
func (c *Catalog) All() []*Entry {
	return c.order
}

// Filenames returns every filename in discovery order.
func (c *Catalog) Filenames() []string {
	out := make([]string, len(c.order))
	for i, e := range c.order {
		out[i] = e.Filename
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Lookup returns the entry for filename.
func (c *Catalog) Lookup(filename string) (*Entry, bool) {
	e, ok := c.byName[filename]
	return e, ok
}

// Background returns the background linked to e.
func (c *Catalog) Background(e *Entry) (*Entry, bool) {
	bg, ok := c.background[e.Filename]
	return bg, ok
}

// Reference returns the reference linked to sample e.
func (c *Catalog) Reference(e *Entry) (*Entry, bool) {
	ref, ok := c.reference[e.Filename]
	return ref, ok
}

// Discover lists the base names of files in dir carrying [Extension],
// in the order returned by os.ReadDir (sorted by name).
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
