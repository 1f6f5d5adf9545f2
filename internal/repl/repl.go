package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"arevel/internal/object"
	"arevel/internal/store"
	"arevel/internal/symbol"

	"github.com/peterh/liner"
)

const PROMPT = ">> "

var completionWords = func() []string {
	words := []string{"and", "or", "not", "True", "False", "None"}
	for _, m := range symbol.Modules() {
		words = append(words, m.Name)
	}
	return words
}()

// Start runs the interactive loop until Ctrl+D or exit.
func Start(ctx context.Context, out io.Writer, env *object.Environment, st *store.Store, version string) error {
	session, err := NewSession(env, st)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(session.Completions)

	historyFile := filepath.Join(os.TempDir(), ".arevel_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "arevel", version)
	fmt.Fprintln(out, "Type ':help' for commands, 'exit' or Ctrl+D to quit")

	for {
		input, err := line.Prompt(PROMPT)
		if err == liner.ErrPromptAborted {
			fmt.Fprintln(out, "^C")
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}
		line.AppendHistory(input)

		if strings.HasPrefix(trimmed, ":") && !strings.Contains(trimmed, " ") {
			result, _ := session.Command(ctx, trimmed)
			fmt.Fprintln(out, result)
			continue
		}

		result, err := session.Exec(ctx, input)
		if err != nil {
			if !IsCellError(err) {
				return err
			}
			fmt.Fprintln(out, err)
			if result == "" {
				continue
			}
		}
		if result != "" {
			fmt.Fprintln(out, strings.TrimPrefix(result, "\n"))
		}
	}
}
