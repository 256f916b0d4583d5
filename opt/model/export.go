package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/netcompose/netcompose/opt"
)

// Resources returns the names of all consumed resources, sorted.
func (m *Model) Resources() []string {
	names := make([]string, 0, len(m.resources))
	for name := range m.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String summarizes the model for logs and the inspect command.
func (m *Model) String() string {
	state := "open"
	if m.composed {
		state = "composed"
	}
	return fmt.Sprintf("model %q (%s): %d variables, %d rows, %d resources, %d epochs, %s",
		m.name, m.id, len(m.vars), len(m.rows), len(m.resources), m.epochs, state)
}

// WriteLP renders the model as CPLEX LP text. Variables and rows appear in
// creation order, so two identical compositions render byte-identically.
// The model must be composed first.
func (m *Model) WriteLP(w io.Writer) error {
	if !m.composed {
		return fmt.Errorf("%w: cannot export LP before objectives are composed", opt.ErrComposition)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\\ netcompose model %q\n", m.name)
	b.WriteString("Maximize\n obj: ")
	writeExpr(&b, m.objTerms, m.vars)
	b.WriteString("\nSubject To\n")
	for _, r := range m.rows {
		b.WriteString(" ")
		b.WriteString(r.name)
		b.WriteString(": ")
		writeExpr(&b, r.terms, m.vars)
		fmt.Fprintf(&b, " %s %s\n", r.op, formatFloat(r.rhs))
	}
	b.WriteString("Bounds\n")
	for _, v := range m.vars {
		fmt.Fprintf(&b, " %s <= %s <= %s\n", formatFloat(v.lo), v.name, formatFloat(v.hi))
	}
	b.WriteString("End\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ExportLP writes the LP rendering to a file.
func (m *Model) ExportLP(path string) error {
	var b strings.Builder
	if err := m.WriteLP(&b); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing LP file: %w", err)
	}
	m.log.Debugf("wrote LP model to %s", path)
	return nil
}

// ModelJSON is the JSON export shape of a composed model.
type ModelJSON struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Epochs    int            `json:"epochs"`
	Resources []string       `json:"resources"`
	Objective string         `json:"objective"`
	Variables []VariableJSON `json:"variables"`
	Rows      []RowJSON      `json:"rows"`
}

// VariableJSON is one bounded variable in the JSON export.
type VariableJSON struct {
	Name string  `json:"name"`
	Lo   float64 `json:"lo"`
	Hi   float64 `json:"hi"`
}

// RowJSON is one rendered constraint in the JSON export.
type RowJSON struct {
	Name string  `json:"name"`
	Expr string  `json:"expr"`
	Op   string  `json:"op"`
	RHS  float64 `json:"rhs"`
}

// JSON builds the JSON export shape. The model must be composed first.
func (m *Model) JSON() (ModelJSON, error) {
	if !m.composed {
		return ModelJSON{}, fmt.Errorf("%w: cannot export JSON before objectives are composed", opt.ErrComposition)
	}
	out := ModelJSON{
		ID:        m.id,
		Name:      m.name,
		Epochs:    m.epochs,
		Resources: m.Resources(),
		Objective: exprString(m.objTerms, m.vars),
		Variables: make([]VariableJSON, len(m.vars)),
		Rows:      make([]RowJSON, len(m.rows)),
	}
	for i, v := range m.vars {
		out.Variables[i] = VariableJSON{Name: v.name, Lo: v.lo, Hi: v.hi}
	}
	for i, r := range m.rows {
		out.Rows[i] = RowJSON{Name: r.name, Expr: exprString(r.terms, m.vars), Op: r.op.String(), RHS: r.rhs}
	}
	return out, nil
}

// ExportJSON writes the JSON export to a file.
func (m *Model) ExportJSON(path string) error {
	snapshot, err := m.JSON()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	m.log.Debugf("wrote JSON model to %s", path)
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeExpr renders a linear expression with explicit +/- separators, the
// way LP solvers expect. Unit coefficients drop the multiplier.
func writeExpr(b *strings.Builder, terms []term, vars []variable) {
	if len(terms) == 0 {
		b.WriteString("0")
		return
	}
	for i, t := range terms {
		coef := t.coef
		switch {
		case i == 0 && coef < 0:
			b.WriteString("- ")
			coef = -coef
		case i > 0 && coef < 0:
			b.WriteString(" - ")
			coef = -coef
		case i > 0:
			b.WriteString(" + ")
		}
		if coef != 1 {
			b.WriteString(formatFloat(coef))
			b.WriteByte(' ')
		}
		b.WriteString(vars[t.varIdx].name)
	}
}

func exprString(terms []term, vars []variable) string {
	var b strings.Builder
	writeExpr(&b, terms, vars)
	return b.String()
}
