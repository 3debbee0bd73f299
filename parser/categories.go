package parser

import (
	"github.com/beevik/etree"
	"github.com/samber/lo"
)

const categorySeparator = ":"

// categories collects the unique "name:value" labels of the trait elements
// held by traits containers beneath el. With allDescendants set, containers
// at any depth count; otherwise only direct children of el.
func categories(el *etree.Element, allDescendants bool) []string {
	containers := el.SelectElements("traits")
	if allDescendants {
		containers = descendants(el, "traits")
	}

	var labels []string
	for _, traits := range containers {
		for _, trait := range traits.SelectElements("trait") {
			labels = append(labels, optionalAttr(trait, "name", "")+categorySeparator+optionalAttr(trait, "value", ""))
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return lo.Uniq(labels)
}
