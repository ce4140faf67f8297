package typemap

import (
	"fmt"

	"github.com/goliatone/go-guesser/pkg/model"
)

// List returns the type map used by list guessers: one Datagrid column per
// field. Arrays collapse to chips of their first nested field and rich text
// is shown as plain text.
func List() TypeMap {
	return MustNew("list", map[model.Tag]Entry{
		model.TagForm: {
			Component:      container("Datagrid"),
			Representation: layout(`<Datagrid rowClick="edit">`, "</Datagrid>"),
		},
		model.TagArray: {
			Component: func(props model.Props, children []model.Node) model.Node {
				return model.Node{
					Component: "ArrayField",
					Props:     props,
					Children: []model.Node{{
						Component: "SingleFieldList",
						Children: []model.Node{
							{Component: "ChipField", Props: model.Props{Source: firstNodeSource(children)}},
						},
					}},
				}
			},
			Representation: func(props model.Props, children []Fragment) string {
				return fmt.Sprintf(`<ArrayField source="%s"><SingleFieldList><ChipField source="%s" /></SingleFieldList></ArrayField>`,
					attr(props.Source), attr(firstFragmentSource(children)))
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
			Component:      leaf("TextField"),
			Representation: sourceTag("TextField"),
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

func firstNodeSource(children []model.Node) string {
	if len(children) == 0 || children[0].Props.Source == "" {
		return "id"
	}
	return children[0].Props.Source
}

func firstFragmentSource(children []Fragment) string {
	if len(children) == 0 || children[0].Props.Source == "" {
		return "id"
	}
	return children[0].Props.Source
}
