package html

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cast"

	"github.com/goliatone/go-guesser/internal/naming"
	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/render"
)

// cell is the template view of one field value.
type cell struct {
	Source    string   `json:"source"`
	Label     string   `json:"label"`
	Component string   `json:"component"`
	Tag       string   `json:"tag"`
	Kind      string   `json:"kind"`
	Text      string   `json:"text"`
	Href      string   `json:"href,omitempty"`
	HTML      string   `json:"html,omitempty"`
	Items     []cell   `json:"items,omitempty"`
	Columns   []column `json:"columns,omitempty"`
	Rows      []row    `json:"rows,omitempty"`
	Input     string   `json:"input,omitempty"`
	Checked   bool     `json:"checked,omitempty"`
	Reference string   `json:"reference,omitempty"`
	Readonly  bool     `json:"readonly,omitempty"`
}

type column struct {
	Source string `json:"source"`
	Label  string `json:"label"`
}

type row struct {
	Href  string `json:"href,omitempty"`
	Cells []cell `json:"cells"`
}

func recordData(record *model.Record) map[string]any {
	if record == nil {
		return map[string]any{}
	}
	return record.Map()
}

func (r *Renderer) recordCells(page render.Page, inputs bool) []cell {
	data := recordData(page.Record())
	fields := page.Fields()
	cells := make([]cell, 0, len(fields))
	for _, node := range fields {
		c := r.cell(node, data)
		if inputs {
			c = withInput(c, node)
		}
		cells = append(cells, c)
	}
	return cells
}

func (r *Renderer) grid(page render.Page) ([]column, []row) {
	fields := page.Fields()
	columns := columnsOf(fields)
	rows := make([]row, 0, len(page.Records))
	for _, record := range page.Records {
		if record == nil {
			continue
		}
		data := record.Map()
		out := row{Cells: make([]cell, 0, len(fields))}
		for _, node := range fields {
			out.Cells = append(out.Cells, r.cell(node, data))
		}
		if id, ok := r.identifier(fields, data); ok {
			out.Href = r.href(page.Resource, id, "/show")
		}
		rows = append(rows, out)
	}
	return columns, rows
}

// identifier returns the value of the field rendered for the id tag.
func (r *Renderer) identifier(fields []model.Node, data any) (string, bool) {
	for _, node := range fields {
		if node.Tag != model.TagID {
			continue
		}
		text := textOf(lookup(data, node.Props.Source))
		return text, text != ""
	}
	return "", false
}

func (r *Renderer) cell(node model.Node, data any) cell {
	source := node.Props.Source
	value := lookup(data, source)
	c := cell{
		Source:    source,
		Label:     fieldLabel(node),
		Component: node.Component,
		Tag:       node.Tag.String(),
		Kind:      "text",
		Text:      textOf(value),
		Reference: node.Props.Reference,
	}

	switch node.Tag {
	case model.TagBoolean:
		c.Kind = "boolean"
		c.Checked = cast.ToBool(value)
		if value != nil {
			c.Text = "No"
			if c.Checked {
				c.Text = "Yes"
			}
		}
	case model.TagURL:
		if c.Text != "" {
			c.Kind = "link"
			c.Href = c.Text
		}
	case model.TagEmail:
		if c.Text != "" {
			c.Kind = "link"
			c.Href = "mailto:" + c.Text
		}
	case model.TagRichText:
		c.Kind = "html"
		c.HTML = r.policy.Sanitize(c.Text)
	case model.TagReference:
		if c.Text != "" {
			c.Kind = "link"
			c.Href = r.href(node.Props.Reference, c.Text, "/show")
		}
	case model.TagReferenceArray:
		c.Kind = "chips"
		items, _ := value.([]any)
		texts := make([]string, 0, len(items))
		for _, item := range items {
			text := textOf(item)
			c.Items = append(c.Items, cell{Text: text, Href: r.href(node.Props.Reference, text, "/show")})
			texts = append(texts, text)
		}
		c.Text = strings.Join(texts, ", ")
	case model.TagArray:
		c.Kind = "table"
		nodes := fieldNodes(node)
		c.Columns = columnsOf(nodes)
		items, _ := value.([]any)
		for _, item := range items {
			out := row{Cells: make([]cell, 0, len(nodes))}
			for _, child := range nodes {
				out.Cells = append(out.Cells, r.cell(child, item))
			}
			c.Rows = append(c.Rows, out)
		}
		c.Text = ""
	}
	return c
}

func withInput(c cell, node model.Node) cell {
	switch node.Tag {
	case model.TagID:
		c.Input = "text"
		c.Readonly = true
	case model.TagBoolean:
		c.Input = "checkbox"
	case model.TagNumber:
		c.Input = "number"
	case model.TagEmail:
		c.Input = "email"
	case model.TagURL:
		c.Input = "url"
	case model.TagDate:
		c.Input = "text"
	case model.TagRichText:
		c.Input = "textarea"
	case model.TagArray:
		c.Input = "table"
	default:
		c.Input = "text"
	}
	return c
}

// fieldNodes returns the nearest tagged descendants of node, looking through
// untagged wrappers such as Datagrid. Nodes whose children were replaced by
// the type map fall back to the nearest descendants carrying a source.
func fieldNodes(node model.Node) []model.Node {
	var tagged, sourced []model.Node
	for _, child := range node.Children {
		child.Walk(func(n model.Node) bool {
			if n.Tag.Valid() {
				tagged = append(tagged, n)
				return false
			}
			if n.Props.Source != "" {
				sourced = append(sourced, n)
				return false
			}
			return true
		})
	}
	if len(tagged) > 0 {
		return tagged
	}
	return sourced
}

func columnsOf(nodes []model.Node) []column {
	columns := make([]column, 0, len(nodes))
	for _, node := range nodes {
		columns = append(columns, column{Source: node.Props.Source, Label: fieldLabel(node)})
	}
	return columns
}

func fieldLabel(node model.Node) string {
	if label := strings.TrimSpace(node.Props.Label); label != "" {
		return label
	}
	return naming.Label(node.Props.Source)
}

// lookup resolves a dot separated source path against plain decoded data.
func lookup(data any, source string) any {
	source = strings.TrimSpace(source)
	if source == "" || data == nil {
		return nil
	}
	x := jp.R()
	for _, segment := range strings.Split(source, ".") {
		x = x.C(segment)
	}
	if results := x.Get(data); len(results) > 0 {
		return results[0]
	}
	return nil
}

func textOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, textOf(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
	if text, err := cast.ToStringE(value); err == nil {
		return text
	}
	return fmt.Sprint(value)
}
