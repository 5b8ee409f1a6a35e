// Package note models a single zettelkasten note: its backing file,
// the identity derived from its text at load time, and the generated
// backlinks section at its end.
package note

import (
	"strings"
	"unicode"

	"github.com/katalorg/katalorg/internal/parser"
)

// NoTitle is the display fallback for notes without a derivable title.
const NoTitle = "(no title)"

// Note wraps one file's content plus the fields derived from it. The
// id, title and links are fixed when the note is loaded; only the
// content buffer changes afterwards, and only through UpdateBacklinks.
type Note struct {
	file   *File
	parser *parser.NoteParser

	content string
	id      string
	title   string
	links   []string
}

// Load reads the file once and derives id, title and links. The
// backlinks section is stripped before derivation so a previously
// generated section never contributes to the note's own identity or
// outgoing links. A note without an ID in its body falls back to an
// ID embedded in the file name.
func Load(file *File, p *parser.NoteParser) (*Note, error) {
	content, err := file.Read()
	if err != nil {
		return nil, err
	}

	body := p.RemoveBacklinks(content)

	id := p.ID(body)
	if id == "" {
		id = p.ID(file.Name())
	}

	return &Note{
		file:    file,
		parser:  p,
		content: content,
		id:      id,
		title:   p.Title(body),
		links:   p.Links(body),
	}, nil
}

func (n *Note) ID() string {
	return n.id
}

// SetID overrides the derived identifier; used when renaming assigns
// a fresh one.
func (n *Note) SetID(id string) {
	n.id = id
}

func (n *Note) Path() string {
	return n.file.Path()
}

func (n *Note) Filename() string {
	return n.file.Name()
}

func (n *Note) FilenameWithoutExtension() string {
	return n.file.NameWithoutExtension()
}

// Title returns the first level 1 heading, falling back to the file
// name with any ID prefix stripped. It may be empty.
func (n *Note) Title() string {
	if n.title != "" {
		return n.title
	}
	return n.parser.StripIDPrefix(n.FilenameWithoutExtension())
}

// DisplayTitle is Title with a placeholder for untitled notes.
func (n *Note) DisplayTitle() string {
	if title := n.Title(); title != "" {
		return title
	}
	return NoTitle
}

// URI returns the target other notes use to link here: the ID when
// there is one, otherwise the file name without extension.
func (n *Note) URI() string {
	if n.id != "" {
		return n.id
	}
	return n.FilenameWithoutExtension()
}

// Identifier resolves the key this note occupies in a collection: id,
// else the heading title, else the file name without extension so the
// last resort agrees with URI.
func (n *Note) Identifier() string {
	if n.id != "" {
		return n.id
	}
	if n.title != "" {
		return n.title
	}
	return n.FilenameWithoutExtension()
}

// Links returns the outgoing link targets, deduplicated, in order of
// first occurrence.
func (n *Note) Links() []string {
	return n.links
}

func (n *Note) Content() string {
	return n.content
}

// LinkTo renders the backlink entry other notes carry for this note:
// a link to its URI followed by its title, with the title omitted
// when it case-insensitively duplicates the URI.
func (n *Note) LinkTo() string {
	uri := n.URI()
	link := n.parser.Link(uri)

	title := n.Title()
	if title != "" && !strings.EqualFold(uri, title) {
		return strings.TrimRight(link+" "+title, " ")
	}
	return link
}

// BacklinksChanged reports whether the existing backlinks section
// differs from the one the linking notes would produce. The
// comparison is order insensitive but duplicate entries count.
func (n *Note) BacklinksChanged(linking []*Note) bool {
	current := n.parser.BacklinkEntries(n.content)
	fresh := renderEntries(linking)

	if len(current) != len(fresh) {
		return true
	}

	counts := make(map[string]int, len(current))
	for _, entry := range current {
		counts[entry]++
	}
	for _, entry := range fresh {
		counts[entry]--
		if counts[entry] < 0 {
			return true
		}
	}
	return false
}

// UpdateBacklinks rewrites the backlinks section from the linking
// notes when it changed, or unconditionally when overwrite is set.
// With no linking notes any stale section is removed and nothing is
// appended. It reports whether the content was rewritten; persisting
// is the caller's concern.
func (n *Note) UpdateBacklinks(linking []*Note, overwrite bool) bool {
	if !overwrite && !n.BacklinksChanged(linking) {
		return false
	}

	content := n.parser.RemoveBacklinks(n.content)
	if len(linking) > 0 {
		content = n.parser.AppendBacklinks(content, renderEntries(linking))
	}
	n.content = content

	return true
}

// Save writes the content back to the file, trimmed of trailing
// whitespace and with exactly one trailing newline.
func (n *Note) Save() error {
	return n.file.Write(strings.TrimRightFunc(n.content, unicode.IsSpace) + "\n")
}

// RenameFile renames the backing file and returns the new path.
func (n *Note) RenameFile(name string) (string, error) {
	return n.file.Rename(name)
}

func renderEntries(linking []*Note) []string {
	var entries []string
	for _, ln := range linking {
		entries = append(entries, ln.LinkTo())
	}
	return entries
}
