package detect

import (
	"fmt"

	"github.com/goliatone/go-guesser/pkg/element"
	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/typemap"
)

// Props converts an inference into element props.
func (i Inference) Props() model.Props {
	return model.Props{
		Source:     i.Source,
		Reference:  i.Reference,
		OptionText: i.OptionText,
	}
}

// Tags lists the tags of inferences in order, without children.
func Tags(inferences []Inference) []model.Tag {
	out := make([]model.Tag, len(inferences))
	for idx, inference := range inferences {
		out[idx] = inference.Tag
	}
	return out
}

// Elements synthesizes one element per inference against types. Children are
// synthesized first so every tag in the tree is checked.
func Elements(types typemap.TypeMap, inferences []Inference) ([]*element.Element, error) {
	out := make([]*element.Element, 0, len(inferences))
	for _, inference := range inferences {
		el, err := synthesize(types, inference)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func synthesize(types typemap.TypeMap, inference Inference) (*element.Element, error) {
	children := make([]*element.Element, 0, len(inference.Children))
	for _, child := range inference.Children {
		el, err := synthesize(types, child)
		if err != nil {
			return nil, err
		}
		children = append(children, el)
	}
	el, err := element.Synthesize(types, inference.Tag, inference.Props(), children...)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	return el, nil
}

// ElementsFromRecords runs detection over records and synthesizes the
// resulting elements.
func (d *Detector) ElementsFromRecords(resourceName string, records []*model.Record, types typemap.TypeMap) ([]*element.Element, error) {
	return Elements(types, d.Detect(resourceName, records))
}
