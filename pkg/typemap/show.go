package typemap

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-guesser/pkg/model"
)

// Show returns the type map used by show guessers: read-only fields inside a
// SimpleShowLayout.
func Show() TypeMap {
	return MustNew("show", map[model.Tag]Entry{
		model.TagForm: {
			Component:      container("SimpleShowLayout"),
			Representation: layout("<SimpleShowLayout>", "</SimpleShowLayout>"),
		},
		model.TagArray: {
			Component: wrapped("ArrayField", "Datagrid"),
			Representation: func(props model.Props, children []Fragment) string {
				var b strings.Builder
				fmt.Fprintf(&b, `<ArrayField source="%s"><Datagrid>`, attr(props.Source))
				for _, child := range children {
					b.WriteString("\n                    ")
					b.WriteString(child.Text)
				}
				b.WriteString("\n                </Datagrid></ArrayField>")
				return b.String()
			},
		},
		model.TagBoolean: {
			Component:      leaf("BooleanField"),
			Representation: sourceTag("BooleanField"),
		},
		model.TagDate: {
			Component:      leaf("DateField"),
			Representation: sourceTag("DateField"),
		},
		model.TagEmail: {
			Component:      leaf("EmailField"),
			Representation: sourceTag("EmailField"),
		},
		model.TagID: {
			Component:      leaf("TextField"),
			Representation: sourceTag("TextField"),
		},
		model.TagNumber: {
			Component:      leaf("NumberField"),
			Representation: sourceTag("NumberField"),
		},
		model.TagReference: {
			Component: container("ReferenceField"),
			Representation: func(props model.Props, children []Fragment) string {
				return fmt.Sprintf(`<ReferenceField source="%s" reference="%s">%s</ReferenceField>`,
					attr(props.Source), attr(props.Reference), joined(children, ""))
			},
		},
		model.TagReferenceChild: {
			Component: displayField,
			Representation: func(props model.Props, _ []Fragment) string {
				return fmt.Sprintf(`<TextField source="%s" />`, attr(optionText(props)))
			},
		},
		model.TagReferenceArray: {
			Component: container("ReferenceArrayField"),
			Representation: func(props model.Props, children []Fragment) string {
				return fmt.Sprintf(`<ReferenceArrayField source="%s" reference="%s">%s</ReferenceArrayField>`,
					attr(props.Source), attr(props.Reference), joined(children, ""))
			},
		},
		model.TagReferenceArrayChild: {
			Component: chipList,
			Representation: func(props model.Props, _ []Fragment) string {
				return fmt.Sprintf(`<SingleFieldList><ChipField source="%s" /></SingleFieldList>`, attr(optionText(props)))
			},
		},
		model.TagRichText: {
			Component:      leaf("RichTextField"),
			Representation: sourceTag("RichTextField"),
		},
		model.TagString: {
			Component:      leaf("TextField"),
			Representation: sourceTag("TextField"),
		},
		model.TagURL: {
			Component:      leaf("UrlField"),
			Representation: sourceTag("UrlField"),
		},
	})
}

// displayField renders the referenced record through its display field.
func displayField(props model.Props, _ []model.Node) model.Node {
	return model.Node{Component: "TextField", Props: model.Props{Source: optionText(props)}}
}

func chipList(props model.Props, _ []model.Node) model.Node {
	return model.Node{
		Component: "SingleFieldList",
		Children: []model.Node{
			{Component: "ChipField", Props: model.Props{Source: optionText(props)}},
		},
	}
}
