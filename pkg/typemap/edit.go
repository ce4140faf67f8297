package typemap

import (
	"fmt"

	"github.com/goliatone/go-guesser/pkg/model"
)

// Edit returns the type map used by edit guessers: inputs inside a
// SimpleForm.
func Edit() TypeMap {
	return MustNew("edit", map[model.Tag]Entry{
		model.TagForm: {
			Component:      container("SimpleForm"),
			Representation: layout("<SimpleForm>", "</SimpleForm>"),
		},
		model.TagArray: {
			Component: wrapped("ArrayInput", "SimpleFormIterator"),
			Representation: func(props model.Props, children []Fragment) string {
				return fmt.Sprintf(`<ArrayInput source="%s"><SimpleFormIterator>%s</SimpleFormIterator></ArrayInput>`,
					attr(props.Source), joined(children, "\n"))
			},
		},
		model.TagBoolean: {
			Component:      leaf("BooleanInput"),
			Representation: sourceTag("BooleanInput"),
		},
		model.TagDate: {
			Component:      leaf("DateInput"),
			Representation: sourceTag("DateInput"),
		},
		model.TagEmail: {
			Component:      leaf("TextInput"),
			Representation: sourceTag("TextInput"),
		},
		model.TagID: {
			Component:      leaf("TextInput"),
			Representation: sourceTag("TextInput"),
		},
		model.TagNumber: {
			Component:      leaf("NumberInput"),
			Representation: sourceTag("NumberInput"),
		},
		model.TagReference: {
			Component: container("ReferenceInput"),
			Representation: func(props model.Props, children []Fragment) string {
				return fmt.Sprintf(`<ReferenceInput source="%s" reference="%s">%s</ReferenceInput>`,
					attr(props.Source), attr(props.Reference), joined(children, ""))
			},
		},
		model.TagReferenceChild: {
			Component: selectInput,
			Representation: func(props model.Props, _ []Fragment) string {
				return fmt.Sprintf(`<SelectInput optionText="%s" />`, attr(optionText(props)))
			},
		},
		model.TagReferenceArray: {
			Component: container("ReferenceArrayInput"),
			Representation: func(props model.Props, _ []Fragment) string {
				return fmt.Sprintf(`<ReferenceArrayInput source="%s" reference="%s"><TextInput source="id" /></ReferenceArrayInput>`,
					attr(props.Source), attr(props.Reference))
			},
		},
		model.TagReferenceArrayChild: {
			Component: selectInput,
			Representation: func(props model.Props, _ []Fragment) string {
				return fmt.Sprintf(`<SelectInput optionText="%s" />`, attr(optionText(props)))
			},
		},
		model.TagRichText: {
			Component:      leaf("TextInput"),
			Representation: sourceTag("TextInput"),
		},
		model.TagString: {
			Component:      leaf("TextInput"),
			Representation: sourceTag("TextInput"),
		},
		model.TagURL: {
			Component:      leaf("TextInput"),
			Representation: sourceTag("TextInput"),
		},
	})
}

func selectInput(props model.Props, _ []model.Node) model.Node {
	props.OptionText = optionText(props)
	return model.Node{Component: "SelectInput", Props: props}
}
