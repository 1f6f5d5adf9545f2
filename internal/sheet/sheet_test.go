package sheet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"arevel/internal/value"
)

const budget = `
name: budget
cells:
  - name: price
    input: 10
  - name: tax
    input: price * 0.2
  - name: total
    input: =price + tax
  - input: '"sum: " + "ok"'
`

func run(t *testing.T, doc *Document) (*Sheet, []CellResult) {
	t.Helper()
	s, err := Build(doc, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	results, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return s, results
}

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(budget))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Name != "budget" {
		t.Errorf("name wrong. expected=%q, got=%q", "budget", doc.Name)
	}
	if len(doc.Cells) != 4 {
		t.Fatalf("wrong number of cells. got=%d", len(doc.Cells))
	}
	if doc.Cells[0].Input != "10" {
		t.Errorf("numeric input not kept as text. got=%q", doc.Cells[0].Input)
	}

	if _, err := Parse([]byte("cells: [")); err == nil {
		t.Errorf("expected an error for malformed yaml")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.yaml")
	if err := os.WriteFile(path, []byte(budget), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() of marshalled doc error: %v", err)
	}
	if len(again.Cells) != len(doc.Cells) || again.Cells[2].Input != doc.Cells[2].Input {
		t.Errorf("document changed after marshalling: %+v", again)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestRun(t *testing.T) {
	doc, _ := Parse([]byte(budget))
	_, results := run(t, doc)

	tests := []struct {
		name     string
		expected string
	}{
		{"price", "10"},
		{"tax", "2"},
		{"total", "12"},
		{"", "sum: ok"},
	}
	for i, tt := range tests {
		r := results[i]
		if r.ID != uint64(i+1) {
			t.Errorf("results[%d] - id wrong. got=%d", i, r.ID)
		}
		if r.Name != tt.name {
			t.Errorf("results[%d] - name wrong. expected=%q, got=%q", i, tt.name, r.Name)
		}
		if r.Repr != tt.expected {
			t.Errorf("results[%d] - repr wrong. expected=%q, got=%q", i, tt.expected, r.Repr)
		}
		if r.Error != "" {
			t.Errorf("results[%d] - unexpected error %q", i, r.Error)
		}
	}
}

func TestCellErrors(t *testing.T) {
	doc := &Document{Cells: []Cell{
		{Name: "a", Input: "1 +"},
		{Name: "b", Input: "a * 2"},
		{Name: "A", Input: "3"},
		{Name: "c", Input: "missing + 1"},
		{Name: "and", Input: "1"},
		{Name: "d", Input: "(1 + 2"},
	}}
	s, results := run(t, doc)

	tests := []struct {
		code     value.Value
		position int
	}{
		{value.ErrUnexpectedToken, -1},
		{value.ErrUnexpectedToken, -1},
		{value.ErrNameAlreadyUsed, -1},
		{value.ErrUnknownSymbol, 0},
		{value.ErrNameAlreadyUsed, -1},
		{value.ErrUnmatchedParens, -1},
	}
	for i, tt := range tests {
		r := results[i]
		if !r.Value.IsError() {
			t.Errorf("results[%d] - expected an error, got=%q", i, r.Repr)
			continue
		}
		if value.ErrorCode(r.Value) != tt.code {
			t.Errorf("results[%d] - code wrong. expected=%X, got=%X", i, uint64(tt.code), uint64(value.ErrorCode(r.Value)))
		}
		if r.Error != value.Message(tt.code) {
			t.Errorf("results[%d] - message wrong. got=%q", i, r.Error)
		}
		if tt.position >= 0 && r.Position != tt.position {
			t.Errorf("results[%d] - position wrong. expected=%d, got=%d", i, tt.position, r.Position)
		}
	}

	x, ok := s.CellByName("A")
	if !ok || x.CellID != 1 {
		t.Errorf("name lookup should find the first cell, got=%v", x)
	}
}

func TestCycle(t *testing.T) {
	doc := &Document{Cells: []Cell{
		{Name: "a", Input: "b + 1"},
		{Name: "b", Input: "a + 1"},
		{Name: "c", Input: "5"},
	}}
	s, results := run(t, doc)

	if s.Cycle == nil {
		t.Fatalf("expected a cycle")
	}
	if len(s.Cycle.Cells) != 2 {
		t.Errorf("wrong cycle cells. got=%v", s.Cycle.Cells)
	}
	for _, r := range results[:2] {
		if value.ErrorCode(r.Value) != value.ErrCircularDependency {
			t.Errorf("cell %d should be circular, got=%q", r.ID, r.Repr)
		}
	}
	if results[2].Repr != "5" {
		t.Errorf("independent cell wrong. got=%q", results[2].Repr)
	}
}

func TestSetInput(t *testing.T) {
	doc, _ := Parse([]byte(budget))
	s, _ := run(t, doc)

	price, _ := s.CellByName("price")
	if err := s.SetInput(price.CellID, "20"); err != nil {
		t.Fatalf("SetInput() error: %v", err)
	}
	results, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if results[2].Repr != "24" {
		t.Errorf("total not recomputed. expected=%q, got=%q", "24", results[2].Repr)
	}

	if err := s.SetInput(price.CellID, "20 +"); err != nil {
		t.Fatal(err)
	}
	results, _ = s.Run(context.Background())
	if value.ErrorCode(results[0].Value) != value.ErrUnexpectedToken {
		t.Errorf("parse error not stored. got=%q", results[0].Repr)
	}
	if !results[2].Value.IsError() {
		t.Errorf("error did not propagate to total. got=%q", results[2].Repr)
	}

	if err := s.SetInput(99, "1"); err == nil {
		t.Errorf("expected an error for an unknown cell")
	}
}

func TestAddCell(t *testing.T) {
	s, err := Build(&Document{Cells: []Cell{{Name: "total", Input: "rate * 2"}}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	results, _ := s.Run(context.Background())
	if value.ErrorCode(results[0].Value) != value.ErrUnknownSymbol {
		t.Fatalf("expected unknown symbol, got=%q", results[0].Repr)
	}

	if _, err := s.AddCell("rate", "21"); err != nil {
		t.Fatalf("AddCell() error: %v", err)
	}
	results, _ = s.Run(context.Background())
	if results[0].Repr != "42" {
		t.Errorf("dependent not reparsed. expected=%q, got=%q", "42", results[0].Repr)
	}

	doc := s.Document()
	if len(doc.Cells) != 2 || doc.Cells[1].Name != "rate" {
		t.Errorf("document wrong. got=%+v", doc.Cells)
	}
}

func TestNaNCells(t *testing.T) {
	doc := &Document{Cells: []Cell{
		{Name: "a", Input: "sqrt(-1)"},
		{Name: "b", Input: "a == a"},
		{Name: "c", Input: "a + 1"},
	}}
	_, results := run(t, doc)

	if results[0].Repr != "NaN" || results[0].Value.IsPointer() {
		t.Errorf("NaN cell wrong. repr=%q, word=%X", results[0].Repr, uint64(results[0].Value))
	}
	if results[1].Value == value.True {
		t.Errorf("a NaN cell should not equal itself")
	}
	if value.ErrorCode(results[2].Value) != value.ErrExpectedNumber {
		t.Errorf("NaN should be rejected by +, got=%q", results[2].Repr)
	}
}
