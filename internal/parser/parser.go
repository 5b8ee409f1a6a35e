// Package parser implements the Markdown conventions used by katalorg
// notes: timestamp identifiers, wiki-style links, level 1 titles, and
// the generated "Links to this note" section at the end of a note.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultIDPattern matches 14-digit timestamp identifiers such as
	// 20210102150405.
	DefaultIDPattern = `(?:19|20)\d{12}`

	DefaultLinkPrefix  = "[["
	DefaultLinkPostfix = "]]"
)

// SectionHeading is the block appended before generated backlink
// entries. The detection regex also accepts older **Backlinks**
// sections so they are updated rather than duplicated.
const SectionHeading = "\n-----------------\n**Links to this note**\n"

// crlf tolerant newline, mirrored in the section detection pattern.
const newline = `(?:\r?\n)`

// Config describes how identifiers and links are written in a note
// tree. The zero value selects the defaults above.
type Config struct {
	IDPattern   string `yaml:"id_pattern"   json:"id_pattern"`
	LinkPrefix  string `yaml:"link_prefix"  json:"link_prefix"`
	LinkPostfix string `yaml:"link_postfix" json:"link_postfix"`
}

func (c Config) withDefaults() Config {
	if c.IDPattern == "" {
		c.IDPattern = DefaultIDPattern
	}
	if c.LinkPrefix == "" {
		c.LinkPrefix = DefaultLinkPrefix
	}
	if c.LinkPostfix == "" {
		c.LinkPostfix = DefaultLinkPostfix
	}
	return c
}

// NoteParser holds the precompiled patterns for one configuration. It
// is immutable and safe to share across notes.
type NoteParser struct {
	cfg Config

	idRegex       *regexp.Regexp
	idPrefixRegex *regexp.Regexp
	linkRegex     *regexp.Regexp
	titleRegex    *regexp.Regexp
	sectionRegex  *regexp.Regexp
	entryRegex    *regexp.Regexp
}

// New compiles a parser for the given configuration.
func New(cfg Config) (*NoteParser, error) {
	cfg = cfg.withDefaults()

	idWord := asWord(cfg.IDPattern)

	idRegex, err := regexp.Compile(idWord)
	if err != nil {
		return nil, fmt.Errorf("invalid id pattern %q: %w", cfg.IDPattern, err)
	}

	idPrefixRegex, err := regexp.Compile(`^` + idWord + `\s*`)
	if err != nil {
		return nil, fmt.Errorf("invalid id pattern %q: %w", cfg.IDPattern, err)
	}

	// Links may hold anything between the delimiters: IDs, titles, or
	// search queries. Target shape is not validated here.
	linkRegex, err := regexp.Compile(
		regexp.QuoteMeta(cfg.LinkPrefix) + `([^][]+?)` + regexp.QuoteMeta(cfg.LinkPostfix),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid link delimiters %q %q: %w", cfg.LinkPrefix, cfg.LinkPostfix, err)
	}

	sectionPattern := strings.ReplaceAll(
		`\n[-*]{3,}\n+\*\*(?:Backlinks|Links to this note)\*\*(.+)\z`,
		`\n`,
		newline,
	)

	return &NoteParser{
		cfg:           cfg,
		idRegex:       idRegex,
		idPrefixRegex: idPrefixRegex,
		linkRegex:     linkRegex,
		titleRegex:    regexp.MustCompile(`(?m)^#\s+(.+)$`),
		sectionRegex:  regexp.MustCompile(`(?is)` + sectionPattern),
		entryRegex:    regexp.MustCompile(`(?m)^[-*] (.*)$`),
	}, nil
}

// Config returns the configuration the parser was compiled from, with
// defaults applied.
func (p *NoteParser) Config() Config {
	return p.cfg
}

// ID returns the first bare identifier in text, or "" if there is
// none. An identifier wrapped in link delimiters is a link target, not
// the note's own ID, so matches immediately preceded by the link
// prefix or immediately followed by the link postfix are skipped.
// RE2 has no look-around, so the adjacency rule is checked against the
// match positions instead.
func (p *NoteParser) ID(text string) string {
	for _, loc := range p.idRegex.FindAllStringIndex(text, -1) {
		if p.precededByPrefix(text, loc[0]) || p.followedByPostfix(text, loc[1]) {
			continue
		}
		return text[loc[0]:loc[1]]
	}
	return ""
}

func (p *NoteParser) precededByPrefix(text string, start int) bool {
	n := len(p.cfg.LinkPrefix)
	return start >= n && text[start-n:start] == p.cfg.LinkPrefix
}

func (p *NoteParser) followedByPostfix(text string, end int) bool {
	n := len(p.cfg.LinkPostfix)
	return end+n <= len(text) && text[end:end+n] == p.cfg.LinkPostfix
}

// Links returns every link target in text, deduplicated, in order of
// first occurrence.
func (p *NoteParser) Links(text string) []string {
	var links []string
	seen := make(map[string]struct{})

	for _, match := range p.linkRegex.FindAllStringSubmatch(text, -1) {
		target := match[1]
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		links = append(links, target)
	}

	return links
}

// Title returns the text of the first level 1 heading, or "".
func (p *NoteParser) Title(text string) string {
	match := p.titleRegex.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}

// StripIDPrefix removes a leading identifier and any whitespace after
// it. Text without an ID prefix is returned unchanged.
func (p *NoteParser) StripIDPrefix(text string) string {
	if loc := p.idPrefixRegex.FindStringIndex(text); loc != nil {
		return text[loc[1]:]
	}
	return text
}

// Link wraps a URI in the configured delimiters. An empty URI yields
// an empty string rather than an empty pair of delimiters.
func (p *NoteParser) Link(uri string) string {
	if uri == "" {
		return ""
	}
	return p.cfg.LinkPrefix + uri + p.cfg.LinkPostfix
}

// BacklinksSection returns the body of the generated section, which
// runs from its heading to the end of the text.
func (p *NoteParser) BacklinksSection(text string) (string, bool) {
	match := p.sectionRegex.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// BacklinkEntries returns the raw bullet lines of the backlinks
// section in document order. Entries that are not link+title pairs,
// such as manually added notes, are still returned verbatim so change
// detection can compare them literally.
func (p *NoteParser) BacklinkEntries(text string) []string {
	section, ok := p.BacklinksSection(text)
	if !ok {
		return nil
	}

	var entries []string
	for _, match := range p.entryRegex.FindAllStringSubmatch(section, -1) {
		entries = append(entries, match[1])
	}
	return entries
}

// RemoveBacklinks returns text with the backlinks section deleted.
func (p *NoteParser) RemoveBacklinks(text string) string {
	return p.sectionRegex.ReplaceAllString(text, "")
}

// AppendBacklinks trims trailing whitespace from text and appends the
// section heading followed by one bullet per entry.
func (p *NoteParser) AppendBacklinks(text string, entries []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRightFunc(text, unicode.IsSpace))
	b.WriteString("\n")
	b.WriteString(SectionHeading)
	for _, entry := range entries {
		b.WriteString("\n- ")
		b.WriteString(entry)
	}
	return b.String()
}

func asWord(pattern string) string {
	return `\b` + pattern + `\b`
}
