// Package pofile reads and writes gettext PO catalogs.
//
// Only the parts of the format autopo touches are modelled as fields
// (msgid/msgid_plural/msgstr/msgstr[N] and flags). Comments, references,
// msgctxt and the previous-context lines of fuzzy entries are carried
// through untouched, so a load/save cycle leaves the rest of the file as
// it was.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// FlagFuzzy marks a translation that needs human review.
const FlagFuzzy = "fuzzy"

// Entry is a single message of a catalog.
type Entry struct {
	// TranslatorComments are "# " lines.
	TranslatorComments []string
	// ExtractedComments are "#." lines.
	ExtractedComments []string
	// References are "#:" source locations.
	References []string
	// Flags are "#," tags such as fuzzy or c-format.
	Flags []string
	// Previous holds the "#|" (or "#~|") lines of a fuzzy entry as read,
	// prefix included. They are written back unchanged.
	Previous []string

	MsgCtxt      string
	MsgID        string
	MsgIDPlural  string
	MsgStr       string
	MsgStrPlural map[int]string

	// Obsolete marks "#~" entries.
	Obsolete bool
}

// IsPlural reports whether the entry has a plural source form.
func (e *Entry) IsPlural() bool {
	return e.MsgIDPlural != ""
}

// IsTranslated returns true when every required translation slot is
// filled and the entry is not fuzzy.
func (e *Entry) IsTranslated() bool {
	if e.MsgID == "" || e.IsFuzzy() {
		return false
	}
	if e.IsPlural() {
		if len(e.MsgStrPlural) == 0 {
			return false
		}
		for _, v := range e.MsgStrPlural {
			if v == "" {
				return false
			}
		}
		return true
	}
	return e.MsgStr != ""
}

// IsFuzzy returns true if the entry carries the fuzzy flag.
func (e *Entry) IsFuzzy() bool {
	return e.HasFlag(FlagFuzzy)
}

// HasFlag checks if a specific flag is present.
func (e *Entry) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends flag unless it is already present.
func (e *Entry) AddFlag(flag string) {
	if !e.HasFlag(flag) {
		e.Flags = append(e.Flags, flag)
	}
}

// PluralSlot returns msgstr[idx], or "" when the slot does not exist.
func (e *Entry) PluralSlot(idx int) string {
	if e.MsgStrPlural == nil {
		return ""
	}
	return e.MsgStrPlural[idx]
}

// SetPluralSlot stores msgstr[idx], allocating the map when needed.
func (e *Entry) SetPluralSlot(idx int, text string) {
	if e.MsgStrPlural == nil {
		e.MsgStrPlural = make(map[int]string, 2)
	}
	e.MsgStrPlural[idx] = text
}

// Catalog is a parsed PO file.
type Catalog struct {
	// Header is the metadata entry (msgid "").
	Header *Entry
	// Entries are the messages in file order, obsolete ones included.
	Entries []*Entry
}

// New returns an empty catalog with a blank header.
func New() *Catalog {
	return &Catalog{
		Header:  &Entry{},
		Entries: make([]*Entry, 0),
	}
}

// Messages returns the live (non-obsolete, non-header) entries in order.
func (c *Catalog) Messages() []*Entry {
	out := make([]*Entry, 0, len(c.Entries))
	for _, e := range c.Entries {
		if e.MsgID == "" || e.Obsolete {
			continue
		}
		out = append(out, e)
	}
	return out
}

// HeaderField returns a header field value by name (case-insensitive).
func (c *Catalog) HeaderField(name string) string {
	if c.Header == nil {
		return ""
	}
	for _, line := range strings.Split(c.Header.MsgStr, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// SetHeaderField sets or appends a header field.
func (c *Catalog) SetHeaderField(name, value string) {
	if c.Header == nil {
		c.Header = &Entry{}
	}

	lines := strings.Split(c.Header.MsgStr, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				lines[i] = strings.TrimSpace(line[:idx]) + ": " + value
				c.Header.MsgStr = strings.Join(lines, "\n")
				return
			}
		}
	}
	// Keep the trailing newline of the header block
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = append(lines[:len(lines)-1], name+": "+value, "")
	} else {
		lines = append(lines, name+": "+value)
	}
	c.Header.MsgStr = strings.Join(lines, "\n")
}

// Stats counts live entries by state.
func (c *Catalog) Stats() (total, translated, fuzzy, untranslated int) {
	for _, e := range c.Messages() {
		total++
		switch {
		case e.IsFuzzy():
			fuzzy++
		case e.IsTranslated():
			translated++
		default:
			untranslated++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// parser accumulates one entry at a time.
type parser struct {
	cat     *Catalog
	current *Entry
	field   string // last keyword seen, for continuation lines
	plural  int    // index of the last msgstr[N]
}

func (p *parser) entry() *Entry {
	if p.current == nil {
		p.current = &Entry{}
	}
	return p.current
}

func (p *parser) flush() {
	if p.current == nil {
		return
	}
	if p.current.MsgID == "" && !p.current.Obsolete && p.current.MsgIDPlural == "" {
		p.cat.Header = p.current
	} else {
		p.cat.Entries = append(p.cat.Entries, p.current)
	}
	p.current = nil
	p.field = ""
}

func (p *parser) comment(line string) {
	e := p.entry()
	switch {
	case strings.HasPrefix(line, "#:"):
		e.References = append(e.References, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#|"):
		e.Previous = append(e.Previous, line)
	default:
		e.TranslatorComments = append(e.TranslatorComments, strings.TrimPrefix(line[1:], " "))
	}
}

func (p *parser) keyword(lineNum int, line string) error {
	e := p.entry()
	switch {
	case strings.HasPrefix(line, "msgctxt "):
		e.MsgCtxt = unquote(line[len("msgctxt "):])
		p.field = "msgctxt"
	case strings.HasPrefix(line, "msgid_plural "):
		e.MsgIDPlural = unquote(line[len("msgid_plural "):])
		p.field = "msgid_plural"
	case strings.HasPrefix(line, "msgid "):
		e.MsgID = unquote(line[len("msgid "):])
		p.field = "msgid"
	case strings.HasPrefix(line, "msgstr["):
		end := strings.Index(line, "]")
		if end < 0 {
			return fmt.Errorf("line %d: invalid msgstr format: %s", lineNum, line)
		}
		idx, err := strconv.Atoi(line[len("msgstr["):end])
		if err != nil {
			return fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
		}
		e.SetPluralSlot(idx, unquote(line[end+1:]))
		p.field = "msgstr[]"
		p.plural = idx
	case strings.HasPrefix(line, "msgstr "):
		e.MsgStr = unquote(line[len("msgstr "):])
		p.field = "msgstr"
	case strings.HasPrefix(line, `"`):
		val := unquote(line)
		switch p.field {
		case "msgctxt":
			e.MsgCtxt += val
		case "msgid":
			e.MsgID += val
		case "msgid_plural":
			e.MsgIDPlural += val
		case "msgstr":
			e.MsgStr += val
		case "msgstr[]":
			e.MsgStrPlural[p.plural] += val
		}
	}
	return nil
}

// Parse reads a PO catalog from r.
func Parse(r io.Reader) (*Catalog, error) {
	p := &parser{cat: New()}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			p.flush()
			continue
		}

		if strings.HasPrefix(line, "#~|") {
			e := p.entry()
			e.Obsolete = true
			e.Previous = append(e.Previous, line)
			continue
		}
		if strings.HasPrefix(line, "#~") {
			p.entry().Obsolete = true
			line = strings.TrimPrefix(strings.TrimPrefix(line, "#~"), " ")
		} else if strings.HasPrefix(line, "#") {
			p.comment(line)
			continue
		}

		if err := p.keyword(lineNum, strings.TrimSpace(line)); err != nil {
			return nil, err
		}
	}
	p.flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}
	return p.cat, nil
}

// Load reads the catalog at path from fs.
func Load(fs afero.Fs, path string) (*Catalog, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cat, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cat, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write serialises the catalog.
func (c *Catalog) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	first := true
	if c.Header != nil && (c.Header.MsgStr != "" || len(c.Header.TranslatorComments) > 0 || len(c.Header.Flags) > 0) {
		writeEntry(bw, c.Header)
		first = false
	}
	for _, e := range c.Entries {
		if !first {
			bw.WriteString("\n")
		}
		first = false
		writeEntry(bw, e)
	}
	return bw.Flush()
}

// Save writes the catalog next to path under a temporary name and renames
// it into place, so readers never observe a half-written file. The mode of
// an existing file is preserved.
func (c *Catalog) Save(fs afero.Fs, path string) error {
	mode := os.FileMode(0644)
	if info, err := fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := c.Write(tmp); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := fs.Chmod(tmpName, mode); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	for _, c := range e.TranslatorComments {
		if c == "" {
			w.WriteString("#\n")
			continue
		}
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, c := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}
	for _, line := range e.Previous {
		w.WriteString(line + "\n")
	}

	if e.MsgCtxt != "" {
		writeField(w, prefix, "msgctxt", e.MsgCtxt)
	}
	writeField(w, prefix, "msgid", e.MsgID)
	if e.IsPlural() {
		writeField(w, prefix, "msgid_plural", e.MsgIDPlural)
	}

	if e.IsPlural() {
		indices := make([]int, 0, len(e.MsgStrPlural))
		for idx := range e.MsgStrPlural {
			indices = append(indices, idx)
		}
		if len(indices) == 0 {
			indices = []int{0, 1}
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeField(w, prefix, fmt.Sprintf("msgstr[%d]", idx), e.PluralSlot(idx))
		}
		return
	}
	writeField(w, prefix, "msgstr", e.MsgStr)
}

// writeField writes a keyword and its value, splitting on newlines the
// way msgmerge does. prefix ("#~ " for obsolete entries) starts every
// line, continuation lines included.
func writeField(w *bufio.Writer, prefix, field, value string) {
	if !strings.Contains(value, "\n") || value == "\n" {
		fmt.Fprintf(w, "%s%s %s\n", prefix, field, quote(value))
		return
	}

	fmt.Fprintf(w, "%s%s \"\"\n", prefix, field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			fmt.Fprintf(w, "%s%s\n", prefix, quote(part+"\n"))
		} else if part != "" {
			fmt.Fprintf(w, "%s%s\n", prefix, quote(part))
		}
	}
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
