package parser

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// descendants returns every element named tag beneath el, in document order.
// el itself is never included.
func descendants(el *etree.Element, tag string) []*etree.Element {
	var found []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if child.Tag == tag {
				found = append(found, child)
			}
			walk(child)
		}
	}
	walk(el)
	return found
}

func firstDescendant(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
		if found := firstDescendant(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func requiredAttr(el *etree.Element, key string) (string, error) {
	attr := el.SelectAttr(key)
	if attr == nil {
		return "", structuralf("<%s> at %s is missing required attribute %q", el.Tag, el.GetPath(), key)
	}
	return attr.Value, nil
}

func requiredFloat(el *etree.Element, key string) (float64, error) {
	raw, err := requiredAttr(el, key)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(raw)
	// strconv also accepts Go literal forms such as 0x1p3 and 1_000.
	if strings.ContainsAny(text, "xX_") {
		return 0, formatf(errNotDecimal, "<%s> at %s has non-numeric %q attribute %q", el.Tag, el.GetPath(), key, raw)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, formatf(err, "<%s> at %s has non-numeric %q attribute %q", el.Tag, el.GetPath(), key, raw)
	}
	return v, nil
}

func optionalAttr(el *etree.Element, key, fallback string) string {
	return el.SelectAttrValue(key, fallback)
}

// childText returns the trimmed text of the first child named tag, or "".
func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
