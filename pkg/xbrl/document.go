// Package xbrl loads XBRL instance documents and extracts a fixed catalog
// of financial concepts from their heterogeneously named tags.
package xbrl

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// ParseError is returned when a structured-markup file cannot be loaded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xbrl: parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Element is one tag in document order. Name keeps the prefixed form the
// document used ("jppfs_cor:NetSales"); Local is the bare local name.
type Element struct {
	Name  string
	Local string
	Text  string
}

// Document is a loaded instance document: a flat, ordered view of its
// elements. It is read-only after Parse, so extraction over it is
// deterministic and safe to repeat.
type Document struct {
	elems []Element
}

// Elements returns the elements in document order.
func (d *Document) Elements() []Element { return d.elems }

// Load reads and parses one XBRL file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}

// Parse tokenizes an XBRL stream. encoding/xml resolves prefixes to
// namespace URIs, so the prefixed tag names the catalog matches against are
// rebuilt from the xmlns declarations seen on the way down.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	prefixes := map[string]string{} // namespace URI -> declared prefix
	var open []int                  // element stack, indexes into doc.elems

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" {
					prefixes[attr.Value] = attr.Name.Local
				}
			}
			name := t.Name.Local
			if p, ok := prefixes[t.Name.Space]; ok && p != "" {
				name = p + ":" + t.Name.Local
			}
			doc.elems = append(doc.elems, Element{Name: name, Local: t.Name.Local})
			open = append(open, len(doc.elems)-1)

		case xml.CharData:
			if len(open) > 0 {
				doc.elems[open[len(open)-1]].Text += string(t)
			}

		case xml.EndElement:
			if len(open) > 0 {
				i := open[len(open)-1]
				doc.elems[i].Text = strings.TrimSpace(doc.elems[i].Text)
				open = open[:len(open)-1]
			}
		}
	}
	return doc, nil
}
