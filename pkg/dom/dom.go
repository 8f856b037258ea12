// Package dom provides a small server-side document model over
// golang.org/x/net/html. Page components scan it for their marker attributes
// and mutate it the same way browser scripts mutate the live DOM, so the
// behaviour of a page can be rendered, replayed and tested without a browser.
//
// Every Element method tolerates a nil receiver: a lookup that finds nothing
// returns nil, and operating on it is a no-op. Components rely on this to
// skip features whose markup is missing instead of failing the page.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document.
type Document struct {
	node *html.Node
}

// Parse parses a complete or partial HTML document. Fragments are wrapped in
// html/head/body by the parser exactly as a browser would.
func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{node: node}, nil
}

// ParseString parses markup held in a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// MustParse is ParseString for markup known at compile time. It panics on error.
func MustParse(markup string) *Document {
	doc, err := ParseString(markup)
	if err != nil {
		panic(err)
	}
	return doc
}

// Root returns the <html> element.
func (d *Document) Root() *Element {
	if d == nil {
		return nil
	}
	for c := d.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return wrap(c)
		}
	}
	return nil
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	root := d.Root()
	if root == nil {
		return nil
	}
	for _, child := range root.Children() {
		if child.node.DataAtom == atom.Body {
			return child
		}
	}
	return nil
}

// ByID returns the element whose id attribute equals id, or nil.
func (d *Document) ByID(id string) *Element {
	if d == nil || id == "" {
		return nil
	}
	return first(d.node, func(n *html.Node) bool { return attr(n, "id") == id })
}

// QueryAttr returns every element carrying the attribute, in document order.
func (d *Document) QueryAttr(key string) []*Element {
	if d == nil {
		return nil
	}
	return collect(d.node, func(n *html.Node) bool { return hasAttr(n, key) })
}

// QueryClass returns every element with the class, in document order.
func (d *Document) QueryClass(class string) []*Element {
	if d == nil {
		return nil
	}
	return collect(d.node, func(n *html.Node) bool { return hasClass(n, class) })
}

// QueryIDPrefix returns every element whose id starts with prefix.
func (d *Document) QueryIDPrefix(prefix string) []*Element {
	if d == nil {
		return nil
	}
	return collect(d.node, func(n *html.Node) bool {
		return strings.HasPrefix(attr(n, "id"), prefix)
	})
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) *Element {
	return NewElement(tag)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.node)
}

// String renders the document, returning an empty string on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Element is a handle on an element node.
type Element struct {
	node *html.Node
}

// NewElement returns a detached element with the given tag.
func NewElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// Wrap returns an Element for an existing element node.
func Wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return wrap(n)
}

func wrap(n *html.Node) *Element {
	return &Element{node: n}
}

// Node exposes the underlying node.
func (e *Element) Node() *html.Node {
	if e == nil {
		return nil
	}
	return e.node
}

// Same reports whether both handles refer to the same node.
func (e *Element) Same(other *Element) bool {
	if e == nil || other == nil {
		return false
	}
	return e.node == other.node
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	if e == nil {
		return ""
	}
	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.AttrOr("id", "")
}

// Attr returns an attribute value and whether it was present.
func (e *Element) Attr(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns an attribute value or def when absent.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

// HasAttr reports whether the attribute is present (an empty value counts).
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	if e == nil {
		return
	}
	for i := range e.node.Attr {
		if e.node.Attr[i].Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	if e == nil {
		return
	}
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	e.node.Attr = attrs
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	if e == nil {
		return nil
	}
	return strings.Fields(attr(e.node, "class"))
}

// HasClass reports whether the class list contains class.
func (e *Element) HasClass(class string) bool {
	if e == nil {
		return false
	}
	return hasClass(e.node, class)
}

// AddClass adds classes that are not already present.
func (e *Element) AddClass(classes ...string) {
	if e == nil {
		return
	}
	list := e.Classes()
	for _, c := range classes {
		if !contains(list, c) {
			list = append(list, c)
		}
	}
	e.SetAttr("class", strings.Join(list, " "))
}

// RemoveClass removes classes. The class attribute is kept, possibly empty.
func (e *Element) RemoveClass(classes ...string) {
	if e == nil {
		return
	}
	list := e.Classes()
	kept := list[:0]
	for _, c := range list {
		if !contains(classes, c) {
			kept = append(kept, c)
		}
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// ToggleClass adds class when on is true and removes it otherwise.
func (e *Element) ToggleClass(class string, on bool) {
	if on {
		e.AddClass(class)
	} else {
		e.RemoveClass(class)
	}
}

// Parent returns the parent element, or nil at the top or when detached.
func (e *Element) Parent() *Element {
	if e == nil || e.node.Parent == nil {
		return nil
	}
	return Wrap(e.node.Parent)
}

// Attached reports whether the element still has a parent node.
func (e *Element) Attached() bool {
	return e != nil && e.node.Parent != nil
}

// Children returns the element children.
func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, wrap(c))
		}
	}
	return out
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if e == nil || other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor-or-self carrying the attribute.
func (e *Element) Closest(key string) *Element {
	if e == nil {
		return nil
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasAttr(n, key) {
			return wrap(n)
		}
	}
	return nil
}

// QueryAttr returns descendants carrying the attribute.
func (e *Element) QueryAttr(key string) []*Element {
	if e == nil {
		return nil
	}
	return collect(e.node, func(n *html.Node) bool { return n != e.node && hasAttr(n, key) })
}

// QueryClass returns descendants with the class.
func (e *Element) QueryClass(class string) []*Element {
	if e == nil {
		return nil
	}
	return collect(e.node, func(n *html.Node) bool { return n != e.node && hasClass(n, class) })
}

// AppendChild appends child, detaching it from any previous parent.
func (e *Element) AppendChild(child *Element) {
	if e == nil || child == nil {
		return
	}
	child.Remove()
	e.node.AppendChild(child.node)
}

// PrependChild inserts child before the first child.
func (e *Element) PrependChild(child *Element) {
	if e == nil || child == nil {
		return
	}
	child.Remove()
	if e.node.FirstChild == nil {
		e.node.AppendChild(child.node)
		return
	}
	e.node.InsertBefore(child.node, e.node.FirstChild)
}

// InsertBefore inserts el as the previous sibling of e. A detached e is
// left unchanged.
func (e *Element) InsertBefore(el *Element) {
	if e == nil || el == nil || e.node.Parent == nil {
		return
	}
	if el.node.Parent != nil {
		el.node.Parent.RemoveChild(el.node)
	}
	e.node.Parent.InsertBefore(el.node, e.node)
}

// Remove detaches the element. Removing a detached element is a no-op.
func (e *Element) Remove() {
	if e == nil || e.node.Parent == nil {
		return
	}
	e.node.Parent.RemoveChild(e.node)
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) {
	if e == nil {
		return
	}
	e.clear()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// SetInnerHTML replaces all children with the parsed fragment.
func (e *Element) SetInnerHTML(markup string) error {
	if e == nil {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}
	e.clear()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// InnerHTML renders the children of e.
func (e *Element) InnerHTML() string {
	if e == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// Render writes the element and its subtree.
func (e *Element) Render(w io.Writer) error {
	if e == nil {
		return nil
	}
	return html.Render(w, e.node)
}

// String renders the element, returning an empty string on error.
func (e *Element) String() string {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (e *Element) clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

func first(root *html.Node, match func(*html.Node) bool) *Element {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	if found == nil {
		return nil
	}
	return wrap(found)
}

func collect(root *html.Node, match func(*html.Node) bool) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, wrap(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	return contains(strings.Fields(attr(n, "class")), class)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
