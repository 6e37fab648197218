// Package pairs loads and stores substitution pairs.
//
// The file holds one pair per line as "original = replacement". The first '='
// delimits the two sides and both are trimmed. Blank lines and lines starting
// with '#' are ignored. Either side may reference a keyring secret as
// {{name}}; see Resolve.
package pairs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

const separator = "="

// Parse reads pairs from r. A line without a separator yields a pair with an
// empty replacement, which the validator reports.
func Parse(r io.Reader) ([]replace.Pair, error) {
	var list []replace.Pair
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		left, right, _ := strings.Cut(line, separator)
		list = append(list, replace.Pair{
			Original:    strings.TrimSpace(left),
			Replacement: strings.TrimSpace(right),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading pairs: %w", err)
	}
	return list, nil
}

// Load reads the pairs file at path. A missing file is an empty list.
func Load(path string) ([]replace.Pair, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening pairs file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Format writes every pair with at least one non-empty side.
func Format(w io.Writer, list []replace.Pair) error {
	for _, p := range list {
		left, right := strings.TrimSpace(p.Original), strings.TrimSpace(p.Replacement)
		if left == "" && right == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s %s\n", left, separator, right); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the pairs file at path, creating its directory if needed.
func Save(path string, list []replace.Pair) error {
	var buf bytes.Buffer
	if err := Format(&buf, list); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pairs directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing pairs file: %w", err)
	}
	return nil
}

// Append adds one pair to the end of the file at path, creating it if
// needed. Existing lines, comments included, are kept as they are.
func Append(path string, p replace.Pair) error {
	var line bytes.Buffer
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading pairs file: %w", err)
	}
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		line.WriteByte('\n')
	}
	if err := Format(&line, []replace.Pair{p}); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pairs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening pairs file: %w", err)
	}
	if _, err := f.Write(line.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("writing pairs file: %w", err)
	}
	return f.Close()
}

var (
	placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)
	secretName  = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// ValidName reports whether name can be referenced as {{name}}.
func ValidName(name string) bool {
	return secretName.MatchString(name)
}

// Resolve substitutes {{name}} placeholders with values from secrets. It
// returns the resolved copy and the sorted names that had no value; those
// placeholders are left as written.
func Resolve(list []replace.Pair, secrets map[string]string) ([]replace.Pair, []string) {
	missing := map[string]struct{}{}
	expand := func(s string) string {
		return placeholder.ReplaceAllStringFunc(s, func(m string) string {
			name := placeholder.FindStringSubmatch(m)[1]
			if v, ok := secrets[name]; ok {
				return v
			}
			missing[name] = struct{}{}
			return m
		})
	}

	out := make([]replace.Pair, len(list))
	for i, p := range list {
		out[i] = replace.Pair{Original: expand(p.Original), Replacement: expand(p.Replacement)}
	}

	names := make([]string, 0, len(missing))
	for n := range missing {
		names = append(names, n)
	}
	sort.Strings(names)
	return out, names
}
