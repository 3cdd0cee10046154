package reporting

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CheckStructure parses a markdown report and verifies it is navigable:
// at least one top-level heading, and every intra-document link resolves
// to a heading anchor.
func CheckStructure(source []byte) error {
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var topLevel int
	anchors := make(map[string]bool)
	var fragments []string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			if v.Level == 1 {
				topLevel++
			}
			anchors[slugify(string(textOf(v, source)))] = true
		case *ast.Link:
			dest := string(v.Destination)
			if strings.HasPrefix(dest, "#") {
				fragments = append(fragments, dest)
			}
		}
		return ast.WalkContinue, nil
	})

	if topLevel == 0 {
		return fmt.Errorf("report has no top-level heading")
	}

	var dangling []string
	for _, f := range fragments {
		if !anchors[strings.TrimPrefix(f, "#")] {
			dangling = append(dangling, f)
		}
	}
	if len(dangling) > 0 {
		return fmt.Errorf("report has %d dangling anchor link(s): %s",
			len(dangling), strings.Join(dangling, ", "))
	}

	return nil
}

// textOf collects the literal text of a node's inline children.
func textOf(n ast.Node, source []byte) []byte {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			out = append(out, t.Segment.Value(source)...)
		case *ast.String:
			out = append(out, t.Value...)
		default:
			out = append(out, textOf(c, source)...)
		}
	}
	return out
}
