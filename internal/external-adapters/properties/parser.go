// Package properties reads Java-style key/value files such as an IDE's dependencies.txt.
package properties

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Properties is a parsed key/value file
type Properties map[string]string

// Get returns the first non-empty value among keys
func (p Properties) Get(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := p[k]; v != "" {
			return v, true
		}
	}
	return "", false
}

// Load reads a properties file from disk
func Load(path string) (Properties, error) {
	//nolint:gosec // G304: path points inside a resolved IDE directory
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open properties file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()
	return Parse(f)
}

// Parse reads "key=value", "key: value" and "key value" lines. Lines starting with '#' or '!'
// are comments and a trailing backslash continues a value on the next line.
func Parse(r io.Reader) (Properties, error) {
	props := make(Properties)
	scanner := bufio.NewScanner(r)

	var pending strings.Builder
	for scanner.Scan() {
		line := strings.TrimLeft(scanner.Text(), " \t\f")
		if pending.Len() == 0 && (line == "" || line[0] == '#' || line[0] == '!') {
			continue
		}

		if strings.HasSuffix(line, `\`) && !strings.HasSuffix(line, `\\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		pending.WriteString(line)

		key, value := splitEntry(pending.String())
		pending.Reset()
		if key != "" {
			props[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}
	if pending.Len() > 0 {
		if key, value := splitEntry(pending.String()); key != "" {
			props[key] = value
		}
	}
	return props, nil
}

func splitEntry(line string) (string, string) {
	idx := strings.IndexAny(line, "=: \t")
	if idx < 0 {
		return strings.TrimSpace(line), ""
	}
	key := line[:idx]
	rest := strings.TrimLeft(line[idx:], " \t")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = rest[1:]
	}
	return key, strings.TrimSpace(rest)
}
