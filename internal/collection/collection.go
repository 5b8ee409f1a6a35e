// Package collection owns the full set of notes in a vault and the
// backlink graph derived from them.
package collection

import (
	"fmt"

	"github.com/katalorg/katalorg/internal/handler"
	"github.com/katalorg/katalorg/internal/note"
)

// NoteFactory builds a Note from a file handle. The collection stays
// agnostic of how notes are parsed.
type NoteFactory func(file *note.File) (*note.Note, error)

// DuplicateIdentifierError aborts an import when two notes resolve to
// the same identifier. Continuing would let one note's backlinks
// silently overwrite another's.
type DuplicateIdentifierError struct {
	Identifier string
	Path       string
	Existing   string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf(
		"duplicate note identifier %q: %s collides with %s",
		e.Identifier,
		e.Path,
		e.Existing,
	)
}

// Collection holds all imported notes keyed by identifier, plus the
// derived backlink graph and classifications. Insertion order is
// tracked so every pass over the collection is deterministic.
type Collection struct {
	notes map[string]*note.Note
	order []string
	uris  map[string]string

	backlinks map[string][]*note.Note
	targets   []string

	NotesWithoutID []*note.Note
	Orphans        []*note.Note
	BrokenLinks    []string
}

func New() *Collection {
	return &Collection{
		notes:     make(map[string]*note.Note),
		uris:      make(map[string]string),
		backlinks: make(map[string][]*note.Note),
	}
}

// Import discovers every file under path with the given extension and
// adds one note per file. The first duplicate identifier aborts the
// import; nothing has been written at that point.
func (c *Collection) Import(path, extension string, factory NoteFactory) error {
	files, err := handler.NewFileHandler(path).WalkFiles(extension)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}

	for _, file := range files {
		n, err := factory(note.NewFile(file))
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", file, err)
		}
		if err := c.Add(n); err != nil {
			return err
		}
	}

	return nil
}

// Add inserts a note under its resolved identifier.
func (c *Collection) Add(n *note.Note) error {
	identifier := n.Identifier()

	if existing, ok := c.notes[identifier]; ok {
		return &DuplicateIdentifierError{
			Identifier: identifier,
			Path:       n.Path(),
			Existing:   existing.Path(),
		}
	}

	c.notes[identifier] = n
	c.order = append(c.order, identifier)

	// A note keyed by its heading title stays reachable through its
	// URI, which is what LinkTo renders. First claim on a URI wins.
	if uri := n.URI(); uri != identifier {
		if _, taken := c.uris[uri]; !taken {
			c.uris[uri] = identifier
		}
	}
	return nil
}

func (c *Collection) Len() int {
	return len(c.order)
}

// Notes returns all notes in import order.
func (c *Collection) Notes() []*note.Note {
	notes := make([]*note.Note, 0, len(c.order))
	for _, identifier := range c.order {
		notes = append(notes, c.notes[identifier])
	}
	return notes
}

// Note returns the note with the given identifier.
func (c *Collection) Note(identifier string) (*note.Note, bool) {
	n, ok := c.notes[identifier]
	return n, ok
}

// Contains reports whether a link target reaches a known note.
func (c *Collection) Contains(target string) bool {
	_, ok := c.Resolve(target)
	return ok
}

// Resolve returns the note a link target reaches: by collection key
// first, then by URI alias.
func (c *Collection) Resolve(target string) (*note.Note, bool) {
	if n, ok := c.notes[target]; ok {
		return n, true
	}
	if identifier, ok := c.uris[target]; ok {
		return c.notes[identifier], true
	}
	return nil, false
}

// FindBacklinks rebuilds the backlink graph from scratch: for every
// note, each outgoing link target gains that note as an incoming one.
// Targets are canonicalized to the linked note's identifier, so a
// note linked by both title and URI collects all its incoming links
// under one key, each linking note counted once. List order per
// target follows import order.
func (c *Collection) FindBacklinks() {
	c.backlinks = make(map[string][]*note.Note)
	c.targets = nil

	for _, n := range c.Notes() {
		seen := make(map[string]bool)
		for _, target := range n.Links() {
			key := target
			if resolved, ok := c.Resolve(target); ok {
				key = resolved.Identifier()
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			if _, ok := c.backlinks[key]; !ok {
				c.targets = append(c.targets, key)
			}
			c.backlinks[key] = append(c.backlinks[key], n)
		}
	}
}

// Backlinks returns the notes linking to the given target.
func (c *Collection) Backlinks(target string) []*note.Note {
	if n, ok := c.Resolve(target); ok {
		return c.backlinks[n.Identifier()]
	}
	return c.backlinks[target]
}

// Classify recomputes the non-fatal findings in one pass: notes
// without a derivable ID, orphans (an ID no note links to), and
// broken links (targets resolving to no known note, one entry per
// linking note).
func (c *Collection) Classify() {
	c.NotesWithoutID = nil
	c.Orphans = nil
	c.BrokenLinks = nil

	for _, n := range c.Notes() {
		if n.ID() == "" {
			c.NotesWithoutID = append(c.NotesWithoutID, n)
		} else if _, ok := c.backlinks[n.ID()]; !ok {
			c.Orphans = append(c.Orphans, n)
		}

		for _, target := range n.Links() {
			if _, ok := c.Resolve(target); !ok {
				c.BrokenLinks = append(c.BrokenLinks, target)
			}
		}
	}
}

// UpdateBacklinksSections rewrites the backlinks section of every note
// somebody links to, and strips stale sections from orphans. Notes are
// persisted as they change; the returned count is the number of files
// written. Targets that resolve to no note are skipped, there is
// nothing to update for a broken link.
func (c *Collection) UpdateBacklinksSections(overwrite bool) (int, error) {
	count := 0

	for _, target := range c.targets {
		n, ok := c.notes[target]
		if !ok {
			continue
		}

		if n.UpdateBacklinks(c.backlinks[target], overwrite) {
			if err := n.Save(); err != nil {
				return count, fmt.Errorf("failed to write %s: %w", n.Path(), err)
			}
			count++
		}
	}

	for _, orphan := range c.Orphans {
		if orphan.UpdateBacklinks(nil, overwrite) {
			if err := orphan.Save(); err != nil {
				return count, fmt.Errorf("failed to write %s: %w", orphan.Path(), err)
			}
			count++
		}
	}

	return count, nil
}
