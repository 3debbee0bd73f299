package parser

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
)

func TestCategories(t *testing.T) {
	const doc = `<test name="T">
  <traits>
    <trait name="Category" value="Unit"/>
    <trait name="Category" value="Unit"/>
    <trait name="Priority" value="1"/>
  </traits>
  <output>
    <traits><trait name="Area" value="UI"/></traits>
  </output>
  <traits><trait name="Flag"/></traits>
</test>`

	tests := []struct {
		name           string
		allDescendants bool
		expected       []string
	}{
		{
			name:           "DirectChildrenOnly",
			allDescendants: false,
			expected:       []string{"Category:Unit", "Priority:1", "Flag:"},
		},
		{
			name:           "AllDescendants",
			allDescendants: true,
			expected:       []string{"Category:Unit", "Priority:1", "Area:UI", "Flag:"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := etree.NewDocument()
			if err := d.ReadFromString(doc); err != nil {
				t.Fatalf("failed to read document: %v", err)
			}

			got := categories(d.Root(), tc.allDescendants)

			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("categories() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCategoriesNone(t *testing.T) {
	d := etree.NewDocument()
	if err := d.ReadFromString(`<test name="T"><traits/></test>`); err != nil {
		t.Fatalf("failed to read document: %v", err)
	}

	if got := categories(d.Root(), true); got != nil {
		t.Errorf("categories() = %v, want nil", got)
	}
}

func TestDescendantsDocumentOrder(t *testing.T) {
	d := etree.NewDocument()
	err := d.ReadFromString(`<a><collection name="1"><collection name="2"/></collection><b><collection name="3"/></b><collection name="4"/></a>`)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}

	var names []string
	for _, el := range descendants(&d.Element, "collection") {
		names = append(names, el.SelectAttrValue("name", ""))
	}

	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, names); diff != "" {
		t.Errorf("descendants() order mismatch (-want +got):\n%s", diff)
	}
}
