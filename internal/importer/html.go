package importer

import (
	"io"
	"strings"

	"github.com/nikbrunner/tcm/internal/model"
	"golang.org/x/net/html"
)

// ParseHTMLReport reads an HTML report written by exporter.ExportHTML and
// returns its test cases with the file each was listed under.
func ParseHTMLReport(r io.Reader) ([]model.Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []model.Entry
	var filePath string // path of the enclosing file section

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "section" && hasClass(n, "file"):
				prev := filePath
				filePath = getAttr(n, "data-path")
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				filePath = prev
				return // Children handled

			case n.Data == "article" && hasClass(n, "test-case"):
				entries = append(entries, model.Entry{
					TestCase: parseTestCase(n),
					FilePath: filePath,
				})
				return // Don't recurse into a test case
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return entries, nil
}

func parseTestCase(n *html.Node) model.TestCase {
	tc := model.TestCase{
		ID:        getAttr(n, "id"),
		Author:    getAttr(n, "data-author"),
		Status:    model.Status(getAttr(n, "data-status")),
		UseCaseID: getAttr(n, "data-use-case"),
		Tags:      []string{},
		Levels:    []string{},
		Actions:   []model.Step{},
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case c.Data == "h4":
			tc.Title = getTextContent(c)
		case c.Data == "p" && hasClass(c, "precondition"):
			tc.Precondition = getTextContent(c)
		case c.Data == "ul" && hasClass(c, "tags"):
			tc.Tags = listItems(c)
		case c.Data == "ul" && hasClass(c, "levels"):
			tc.Levels = listItems(c)
		case c.Data == "ol" && hasClass(c, "steps"):
			for li := c.FirstChild; li != nil; li = li.NextSibling {
				if li.Type == html.ElementNode && li.Data == "li" {
					tc.Actions = append(tc.Actions, model.Step{
						Step:        getTextContent(findClass(li, "step")),
						ExpectedRes: getTextContent(findClass(li, "expected")),
					})
				}
			}
		}
	}
	return tc
}

func listItems(n *html.Node) []string {
	items := []string{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			items = append(items, getTextContent(c))
		}
	}
	return items
}

// findClass returns the first descendant carrying class, or nil.
func findClass(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, class) {
			return c
		}
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
