package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/weaverhq/weaver/internal/client"
)

// Execute runs weaverctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, out io.Writer) int {
	root := NewRootCommand(out)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(out, err)
		return 1
	}
	return 0
}

func printError(out io.Writer, err error) {
	fmt.Fprintf(out, "error: %v\n", err)

	var pe *client.ProblemError
	if !errors.As(err, &pe) {
		return
	}
	fields := make([]string, 0, len(pe.FieldErrors()))
	for f := range pe.FieldErrors() {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		for _, msg := range pe.FieldErrors()[f] {
			fmt.Fprintf(out, "  %s: %s\n", f, msg)
		}
	}
}
