package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	ErrNoBody     = errors.New("document has no body")
	ErrBadPath    = errors.New("node path does not resolve")
	ErrBadAddress = errors.New("page address must be an absolute http(s) URL")
)

// Page is a parsed HTML document together with its canonical address.
type Page struct {
	address string
	host    string
	doc     *goquery.Document
	body    *html.Node
}

// Parse reads an HTML document. address is the canonical URL the document
// was loaded from; highlights are scoped to it.
func Parse(r io.Reader, address string) (*Page, error) {
	u, err := url.Parse(address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadAddress, address)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil, ErrNoBody
	}

	return &Page{
		address: address,
		host:    u.Hostname(),
		doc:     doc,
		body:    body.Get(0),
	}, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(src, address string) (*Page, error) {
	return Parse(strings.NewReader(src), address)
}

func (p *Page) Address() string { return p.address }

// Hostname is the site identifier used by the allow-list.
func (p *Page) Hostname() string { return p.host }

// Title returns the trimmed text of the document <title>.
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// Body returns the <body> element, the root of every traversal.
func (p *Page) Body() *html.Node { return p.body }

// Render writes the whole document, markers included.
func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.doc.Get(0))
}

// HTML renders the document to a string.
func (p *Page) HTML() (string, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Locate resolves a child-index path starting at <body>. An empty path is
// the body itself.
func (p *Page) Locate(path []int) (*html.Node, error) {
	n := p.body
	for depth, i := range path {
		c := n.FirstChild
		for j := 0; c != nil && j < i; j++ {
			c = c.NextSibling
		}
		if i < 0 || c == nil {
			return nil, fmt.Errorf("%w: step %d of %v", ErrBadPath, depth, path)
		}
		n = c
	}
	return n, nil
}

// PathOf returns the child-index path from <body> to n, or false when n is
// not under the body.
func (p *Page) PathOf(n *html.Node) ([]int, bool) {
	var rev []int
	for ; n != nil && n != p.body; n = n.Parent {
		i := 0
		for s := n.PrevSibling; s != nil; s = s.PrevSibling {
			i++
		}
		rev = append(rev, i)
	}
	if n == nil {
		return nil, false
	}
	path := make([]int, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path, true
}

// UTF16ToByte converts an offset counted in UTF-16 code units, as browsers
// report them, into a byte offset into s. Offsets past the end clamp to
// len(s); an offset landing between the halves of a surrogate pair rounds
// down to the start of that character.
func UTF16ToByte(s string, units int) int {
	if units <= 0 {
		return 0
	}
	seen := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if seen+n > units {
			return i
		}
		seen += n
		i += size
		if seen == units {
			return i
		}
	}
	return len(s)
}
