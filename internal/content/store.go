package content

import "sync"

// Store owns the single live ContentIndex. Readers take the current snapshot
// pointer; the watcher is the only writer after startup. Every mutation
// rebuilds the nodes along the affected path and swaps the root pointer, so
// a snapshot handed to a reader is never modified underneath it.
type Store struct {
	mu  sync.RWMutex
	idx *ContentIndex
}

// NewStore wraps an initial index, typically the result of Load.
func NewStore(idx *ContentIndex) *Store {
	return &Store{idx: idx}
}

// Index returns the current snapshot. Callers must treat it as read-only.
func (s *Store) Index() *ContentIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Theme returns the named theme node from the current snapshot.
func (s *Store) Theme(slug string) (*ThemeIndex, bool) {
	t, ok := s.Index().Themes[slug]
	return t, ok
}

// Subcategory resolves a theme/category/subcategory path in the current
// snapshot.
func (s *Store) Subcategory(theme, category, sub string) (*SubcategoryIndex, bool) {
	t, ok := s.Index().Themes[theme]
	if !ok {
		return nil, false
	}
	c, ok := t.Categories[category]
	if !ok {
		return nil, false
	}
	sc, ok := c.Subcategories[sub]
	return sc, ok
}

// SetTheme publishes a theme node, replacing any previous one.
func (s *Store) SetTheme(t *ThemeIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.idx.cloneRoot()
	next.Themes[t.Slug] = t
	s.idx = next
}

// DeleteTheme removes a theme and everything beneath it.
func (s *Store) DeleteTheme(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.idx.Themes[slug]; !ok {
		return
	}
	next := s.idx.cloneRoot()
	delete(next.Themes, slug)
	s.idx = next
}

// SetCategory publishes a category node under the named theme. It reports
// false without mutating anything when the theme is absent, which can happen
// when a parent deletion raced ahead of this update.
func (s *Store) SetCategory(theme string, c *CategoryIndex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.idx.Themes[theme]
	if !ok {
		return false
	}
	nt := t.cloneNode()
	nt.Categories[c.Slug] = c
	next := s.idx.cloneRoot()
	next.Themes[theme] = nt
	s.idx = next
	return true
}

// DeleteCategory removes a category and its subcategories. No-op when the
// theme is absent.
func (s *Store) DeleteCategory(theme, slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.idx.Themes[theme]
	if !ok {
		return false
	}
	if _, ok := t.Categories[slug]; !ok {
		return true
	}
	nt := t.cloneNode()
	delete(nt.Categories, slug)
	next := s.idx.cloneRoot()
	next.Themes[theme] = nt
	s.idx = next
	return true
}

// SetSubcategory publishes a subcategory node. No-op (false) when the theme
// or category is absent.
func (s *Store) SetSubcategory(theme, category string, sub *SubcategoryIndex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.idx.Themes[theme]
	if !ok {
		return false
	}
	c, ok := t.Categories[category]
	if !ok {
		return false
	}
	nc := c.cloneNode()
	nc.Subcategories[sub.Slug] = sub
	nt := t.cloneNode()
	nt.Categories[category] = nc
	next := s.idx.cloneRoot()
	next.Themes[theme] = nt
	s.idx = next
	return true
}

// DeleteSubcategory removes a subcategory node. No-op (false) when a parent
// is absent.
func (s *Store) DeleteSubcategory(theme, category, slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.idx.Themes[theme]
	if !ok {
		return false
	}
	c, ok := t.Categories[category]
	if !ok {
		return false
	}
	if _, ok := c.Subcategories[slug]; !ok {
		return true
	}
	nc := c.cloneNode()
	delete(nc.Subcategories, slug)
	nt := t.cloneNode()
	nt.Categories[category] = nc
	next := s.idx.cloneRoot()
	next.Themes[theme] = nt
	s.idx = next
	return true
}

// cloneRoot copies the index with a fresh top-level theme map. Node pointers
// are shared; whoever needs to change a node deeper down clones along the
// path first.
func (idx *ContentIndex) cloneRoot() *ContentIndex {
	themes := make(map[string]*ThemeIndex, len(idx.Themes))
	for k, v := range idx.Themes {
		themes[k] = v
	}
	return &ContentIndex{Root: idx.Root, Themes: themes}
}

func (t *ThemeIndex) cloneNode() *ThemeIndex {
	cats := make(map[string]*CategoryIndex, len(t.Categories))
	for k, v := range t.Categories {
		cats[k] = v
	}
	return &ThemeIndex{Slug: t.Slug, Meta: t.Meta, Categories: cats}
}

func (c *CategoryIndex) cloneNode() *CategoryIndex {
	subs := make(map[string]*SubcategoryIndex, len(c.Subcategories))
	for k, v := range c.Subcategories {
		subs[k] = v
	}
	return &CategoryIndex{Slug: c.Slug, Meta: c.Meta, Subcategories: subs}
}
