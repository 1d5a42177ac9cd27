// Package xml decodes vendor feed documents into a generic nested map,
// without binding the feed vocabulary to fixed types. Every element maps its
// child tag names to lists of child values, so repeated and single elements
// read the same way; a text-only element decodes to a plain string.
package xml

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/prilavok/catalog-service/internal/parsers/charset"
)

var encodingDeclRe = regexp.MustCompile(`<\?xml[^?]*encoding=["']([^"']+)["'][^?]*\?>`)

// Decode parses an XML document into the generic nested map form. The
// document encoding is taken from the XML declaration when present, detected
// from the bytes otherwise, and converted to UTF-8 before tokenizing.
func Decode(content []byte) (map[string]interface{}, error) {
	enc := detectEncodingFromDeclaration(content)
	if enc == "" {
		enc = charset.DetectEncoding(content)
	}
	decoded, err := charset.Decode(content, enc)
	if err != nil {
		return nil, fmt.Errorf("decoding feed content: %w", err)
	}

	decoder := xml.NewDecoder(strings.NewReader(decoded))
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil // already converted to UTF-8
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("parsing XML: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}
		if start, ok := token.(xml.StartElement); ok {
			root, err := decodeElement(decoder)
			if err != nil {
				return nil, fmt.Errorf("parsing XML: %w", err)
			}
			doc := make(map[string]interface{})
			appendChild(doc, start.Name.Local, root)
			return doc, nil
		}
	}
}

// detectEncodingFromDeclaration extracts the encoding from the XML declaration
func detectEncodingFromDeclaration(content []byte) charset.Encoding {
	limit := len(content)
	if limit > 200 {
		limit = 200
	}
	if match := encodingDeclRe.FindSubmatch(content[:limit]); len(match) > 1 {
		return charset.Encoding(strings.ToLower(string(match[1])))
	}
	return ""
}

// decodeElement recursively decodes the children of the current element. An
// element with child elements becomes a map (text content, if any, under
// "#text"); a text-only element becomes its text string.
func decodeElement(decoder *xml.Decoder) (interface{}, error) {
	children := make(map[string]interface{})
	var text strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			child, err := decodeElement(decoder)
			if err != nil {
				return nil, err
			}
			appendChild(children, t.Name.Local, child)

		case xml.CharData:
			trimmed := strings.TrimSpace(string(t))
			if trimmed != "" {
				text.WriteString(trimmed)
			}

		case xml.EndElement:
			return finishElement(children, text.String()), nil
		}
	}

	return finishElement(children, text.String()), nil
}

// appendChild adds a child value under the given tag, growing the tag's list
func appendChild(node map[string]interface{}, name string, child interface{}) {
	if existing, ok := node[name]; ok {
		node[name] = append(existing.([]interface{}), child)
		return
	}
	node[name] = []interface{}{child}
}

func finishElement(children map[string]interface{}, text string) interface{} {
	if len(children) == 0 {
		return text
	}
	if text != "" {
		children["#text"] = text
	}
	return children
}

// First walks the path taking the first child element at every step. Returns
// nil when any segment is absent or not an element.
func First(node map[string]interface{}, path ...string) map[string]interface{} {
	cur := node
	for _, name := range path {
		if cur == nil {
			return nil
		}
		list, ok := cur[name].([]interface{})
		if !ok || len(list) == 0 {
			return nil
		}
		m, ok := list[0].(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m
	}
	return cur
}

// Text returns the text content of the first element at the path, or "" when
// the path does not resolve to a text value.
func Text(node map[string]interface{}, path ...string) string {
	if node == nil || len(path) == 0 {
		return ""
	}
	parent := node
	if len(path) > 1 {
		parent = First(node, path[:len(path)-1]...)
		if parent == nil {
			return ""
		}
	}
	list, ok := parent[path[len(path)-1]].([]interface{})
	if !ok || len(list) == 0 {
		return ""
	}
	switch v := list[0].(type) {
	case string:
		return v
	case map[string]interface{}:
		if t, ok := v["#text"].(string); ok {
			return t
		}
	}
	return ""
}

// List returns every element under the last path segment, walking the first
// child at each earlier segment. Single and repeated representations both come
// back as a slice.
func List(node map[string]interface{}, path ...string) []map[string]interface{} {
	if node == nil || len(path) == 0 {
		return nil
	}
	parent := node
	if len(path) > 1 {
		parent = First(node, path[:len(path)-1]...)
		if parent == nil {
			return nil
		}
	}
	raw, ok := parent[path[len(path)-1]].([]interface{})
	if !ok {
		return nil
	}
	items := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items
}
