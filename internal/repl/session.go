package repl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"arevel/internal/object"
	"arevel/internal/sheet"
	"arevel/internal/store"
	"arevel/internal/util"
)

// Session is a sheet that grows one line at a time. A line is either
// "name: expression", which defines or redefines a named cell, or a bare
// expression, which becomes an unnamed cell.
type Session struct {
	Sheet *sheet.Sheet
	Store *store.Store

	last map[uint64]string
}

func NewSession(env *object.Environment, st *store.Store) (*Session, error) {
	s, err := sheet.Build(&sheet.Document{Name: "repl"}, env)
	if err != nil {
		return nil, err
	}
	return &Session{Sheet: s, Store: st, last: make(map[uint64]string)}, nil
}

// CellError is a cell that evaluated to an error word.
type CellError struct {
	Result sheet.CellResult
}

func (e *CellError) Error() string {
	if e.Result.Position >= 0 {
		return util.GetContextLines(e.Result.Input, e.Result.Position, e.Result.Error)
	}
	return e.Result.Error
}

// splitDefinition separates "name: expression". The part before the colon
// must be a plain identifier, otherwise the whole line is the expression.
func splitDefinition(line string) (string, string) {
	before, after, found := strings.Cut(line, ":")
	if !found {
		return "", strings.TrimSpace(line)
	}
	name := strings.TrimSpace(before)
	if !isIdentifier(name) {
		return "", strings.TrimSpace(line)
	}
	return name, strings.TrimSpace(after)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// Exec evaluates one line. The output lists the cell's value followed by any
// other cell whose value changed.
func (s *Session) Exec(ctx context.Context, line string) (string, error) {
	name, input := splitDefinition(line)
	if input == "" {
		return "", nil
	}

	var id uint64
	if x, ok := s.Sheet.CellByName(name); ok && name != "" {
		if err := s.Sheet.SetInput(x.CellID, input); err != nil {
			return "", err
		}
		id = x.CellID
	} else {
		x, err := s.Sheet.AddCell(name, input)
		if err != nil {
			return "", err
		}
		id = x.CellID
	}

	results, err := s.Sheet.Run(ctx)
	if err != nil {
		return "", err
	}

	var out, changed strings.Builder
	var cellErr error
	for _, r := range results {
		if r.ID == id {
			if r.Error != "" {
				cellErr = &CellError{Result: r}
			} else {
				out.WriteString(r.Repr)
			}
		} else if prev, seen := s.last[r.ID]; seen && prev != r.Repr {
			fmt.Fprintf(&changed, "\n  %s = %s", label(r), r.Repr)
		}
		s.last[r.ID] = r.Repr
	}
	out.WriteString(changed.String())
	return out.String(), cellErr
}

func label(r sheet.CellResult) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", r.ID)
}

// Command runs a line starting with ':'. It reports false for unknown
// commands.
func (s *Session) Command(ctx context.Context, cmd string) (string, bool) {
	var out strings.Builder
	switch cmd {
	case ":help", ":h", ":?":
		out.WriteString("REPL Commands:\n")
		out.WriteString("  :help, :h, :?   Show this help\n")
		out.WriteString("  :cells          Show every cell and its value\n")
		out.WriteString("  :env            Show the environment bindings\n")
		out.WriteString("  :save           Save the current results to the store\n")
		out.WriteString("  exit, quit      Exit the REPL\n\n")
		out.WriteString("Define a cell with 'name: expression'.")

	case ":cells":
		results, err := s.Sheet.Run(ctx)
		if err != nil {
			return err.Error(), true
		}
		if len(results) == 0 {
			return "(no cells)", true
		}
		for i, r := range results {
			if i > 0 {
				out.WriteString("\n")
			}
			fmt.Fprintf(&out, "  %s: %s = %s", label(r), r.Input, r.Repr)
		}

	case ":env":
		out.WriteString(s.Sheet.Env.Inspect())

	case ":save":
		if s.Store == nil {
			return "no store configured", true
		}
		results, err := s.Sheet.Run(ctx)
		if err != nil {
			return err.Error(), true
		}
		runID, err := s.Store.SaveRun(ctx, s.Sheet.Name, results)
		if err != nil {
			return err.Error(), true
		}
		fmt.Fprintf(&out, "saved run %d", runID)

	default:
		return fmt.Sprintf("Unknown command: %s (type :help for commands)", cmd), false
	}
	return out.String(), true
}

// Completions returns the keywords, functions and cell names starting with
// the last word of line.
func (s *Session) Completions(line string) []string {
	if line == "" || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		return nil
	}
	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	prefix, word := line[:start+1], line[start+1:]
	if word == "" {
		return nil
	}

	words := append([]string(nil), completionWords...)
	for _, x := range s.Sheet.Graph.Cells() {
		if x.Name != "" {
			words = append(words, x.Name)
		}
	}
	sort.Strings(words)

	var matches []string
	for _, w := range words {
		if strings.HasPrefix(strings.ToLower(w), strings.ToLower(word)) {
			matches = append(matches, prefix+w)
		}
	}
	return matches
}

// IsCellError reports whether err came from a cell rather than the session.
func IsCellError(err error) bool {
	var cellErr *CellError
	return errors.As(err, &cellErr)
}
