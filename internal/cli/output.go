package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mokayaj857/vireya/internal/apiclient"
)

// printValue writes strings verbatim and everything else as JSON.
func printValue(w io.Writer, v any, pretty bool) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func describeError(err error) error {
	if st := apiclient.StatusOf(err); st != 0 {
		return fmt.Errorf("backend answered %d: %w", st, err)
	}
	if apiclient.IsUnreachable(err) {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return err
}
