package elo

import (
	"strings"

	"github.com/evoludigit/elo/ast"
	"github.com/evoludigit/elo/diag"
	"github.com/evoludigit/elo/infer"
	"github.com/evoludigit/elo/optimize"
	"github.com/evoludigit/elo/schema"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Explain type checks source and renders a table of every node of the
// expression: where it starts, its text and its inferred type. When
// optimization is enabled the optimized expression is shown as the caption.
func (c *Compiler) Explain(source string, ctx *schema.TypeContext, inputTypeName string) (string, error) {
	e, info, err := c.Check(source, ctx, inputTypeName)
	if err != nil {
		return "", err
	}

	tw := table.NewWriter()
	tw.SetTitle("ELO RULE: " + inputTypeName)
	tw.AppendHeader(table.Row{"Loc", "Expression", "Type"})
	for _, r := range explainRows(source, e, info, 0) {
		tw.AppendRow(r)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 72}})
	if c.opts.optimize {
		tw.SetCaption("optimized: %s", ast.Format(optimize.Optimize(e, info)))
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render(), nil
}

// explainRows lists e and its descendants in source order, indented by depth.
func explainRows(source string, e ast.Expr, info *infer.Info, depth int) []table.Row {
	rows := []table.Row{{
		diag.PositionOf(source, e.Span().Start).String(),
		strings.Repeat("  ", depth) + ast.Format(e),
		info.TypeOf(e).String(),
	}}
	for _, child := range ast.Children(e) {
		rows = append(rows, explainRows(source, child, info, depth+1)...)
	}
	return rows
}
