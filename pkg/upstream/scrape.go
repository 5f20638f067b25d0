package upstream

import (
	"bytes"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// scrapeFileNames extracts the base names of all anchor targets with the
// given extension from an HTML page, in document order. Duplicate links
// (GitHub renders several per file) are collapsed to the first occurrence.
func scrapeFileNames(page []byte, extension string) []string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		// html.Parse recovers from almost anything; a hard failure
		// means there is nothing to enumerate
		return nil
	}

	seen := make(map[string]struct{})
	var names []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attr(n, "href"); ok && strings.HasSuffix(href, extension) {
				name := path.Base(href)
				if _, dup := seen[name]; !dup {
					seen[name] = struct{}{}
					names = append(names, name)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return names
}

// attr returns the value of one attribute of an element node
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
