package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. h1-h6 become heading blocks, <table>
// elements become table blocks with one row per <tr>, and other content
// elements become paragraph blocks.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var b blockBuilder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					b.add(docmodel.BlockHeading, t, 0, nil)
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav":
				return
			case "header":
				if t := textContent(n); t != "" {
					b.add(docmodel.BlockHeader, t, 0, nil)
				}
				return
			case "footer":
				if t := textContent(n); t != "" {
					b.add(docmodel.BlockFooter, t, 0, nil)
				}
				return
			case "table":
				table := htmlTable(n)
				if !table.IsEmpty() {
					b.add(docmodel.BlockTable, "", 0, table)
				}
				return
			case "p", "li", "blockquote":
				if t := textContent(n); t != "" {
					b.add(docmodel.BlockParagraph, t, 0, nil)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	body := findBody(doc)
	if body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return b.document(filename, 0), nil
}

// htmlTable collects rows from <tr> elements; cells come from <td> and
// <th> in document order.
func htmlTable(n *html.Node) *docmodel.Table {
	table := &docmodel.Table{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			if len(cells) > 0 {
				table.Rows = append(table.Rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return table
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
