// Package outputs publishes step outputs: to the $GITHUB_OUTPUT file, and
// optionally mirrored as one file per output under an output directory.
package outputs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/drewdunne/changedfiles/internal/filter"
	"github.com/drewdunne/changedfiles/internal/logging"
)

// Options controls how values are rendered.
type Options struct {
	JSON             bool
	EscapeJSON       bool
	Separator        string
	SafeOutput       bool
	WriteOutputFiles bool
	OutputDir        string
}

// Writer records outputs. It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	out       io.Writer
	log       logging.Logger
	opts      Options
	delimiter func() string
	values    map[string]string
}

// Option configures a Writer.
type Option func(*Writer)

// WithDelimiter overrides the heredoc delimiter generator (for testing).
func WithDelimiter(fn func() string) Option {
	return func(w *Writer) {
		w.delimiter = fn
	}
}

// NewWriter creates a Writer. out receives the $GITHUB_OUTPUT file format;
// when nil, outputs are emitted as set-output workflow commands on stdout.
func NewWriter(out io.Writer, log logging.Logger, opts Options, options ...Option) *Writer {
	if log == nil {
		log = logging.Nop()
	}
	w := &Writer{
		out:  out,
		log:  log,
		opts: opts,
		delimiter: func() string {
			return "ghadelimiter_" + uuid.NewString()
		},
		values: make(map[string]string),
	}
	for _, o := range options {
		o(w)
	}
	return w
}

// Open opens the $GITHUB_OUTPUT file for appending. An empty path yields a
// nil file and no error.
func Open(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	return f, nil
}

// Value returns the last value written for key.
func (w *Writer) Value(key string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.values[key]
	return v, ok
}

// SetString writes a plain output. Surrounding whitespace is trimmed.
func (w *Writer) SetString(key, value string) error {
	return w.set(key, strings.TrimSpace(value), false)
}

// SetBool writes "true" or "false".
func (w *Writer) SetBool(key string, value bool) error {
	return w.SetString(key, fmt.Sprint(value))
}

// SetJSON writes value serialized with JSON.
func (w *Writer) SetJSON(key string, value any) error {
	s, err := JSON(value, w.opts.EscapeJSON)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return w.set(key, s, true)
}

// SetArray writes values as a JSON array when JSON output is enabled and as
// a separator-joined string otherwise.
func (w *Writer) SetArray(key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	if w.opts.JSON {
		return w.SetJSON(key, values)
	}
	return w.SetString(key, strings.Join(values, w.opts.Separator))
}

// SetPaths writes a value produced by the filter pipeline: a []string is
// written as an array and anything else as a string.
func (w *Writer) SetPaths(key string, paths any) error {
	switch v := paths.(type) {
	case []string:
		return w.SetArray(key, v)
	case string:
		return w.SetString(key, v)
	default:
		return w.SetString(key, fmt.Sprint(v))
	}
}

// SetResult writes a rendered path list as key and its count as key_count.
func (w *Writer) SetResult(key string, r filter.Result) error {
	if err := w.SetPaths(key, r.Paths); err != nil {
		return err
	}
	return w.SetString(key+"_count", r.Count)
}

var unsafeChars = regexp.MustCompile("[$()`|&;]")

func (w *Writer) set(key, value string, isJSON bool) error {
	if w.opts.SafeOutput {
		value = unsafeChars.ReplaceAllString(value, `\$0`)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.values[key] = value
	if err := w.emit(key, value); err != nil {
		return err
	}
	if w.opts.WriteOutputFiles {
		if err := w.writeFile(key, value, isJSON); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) emit(key, value string) error {
	if w.out == nil {
		_, err := fmt.Fprintf(os.Stdout, "::set-output name=%s::%s\n", key, escapeCommand(value))
		return err
	}

	delim := w.delimiter()
	if strings.Contains(key, delim) || strings.Contains(value, delim) {
		return fmt.Errorf("writing %s: value contains delimiter %s", key, delim)
	}
	if _, err := fmt.Fprintf(w.out, "%s<<%s\n%s\n%s\n", key, delim, value, delim); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// writeFile mirrors an output to <OutputDir>/<key>.txt or .json.
func (w *Writer) writeFile(key, value string, isJSON bool) error {
	if err := os.MkdirAll(w.opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ext := "txt"
	if isJSON {
		ext = "json"
	}
	path := filepath.Join(w.opts.OutputDir, key+"."+ext)

	if err := os.WriteFile(path, []byte(strings.ReplaceAll(value, `\"`, `"`)), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	w.log.Debug(fmt.Sprintf("Wrote %s", path))
	return nil
}

// JSON serializes value. With escape set, HTML characters are escaped and
// every double quote is backslash-escaped so the result can be embedded in
// a quoted shell string.
func JSON(value any, escape bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(escape)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	s := strings.TrimSuffix(buf.String(), "\n")
	if escape {
		s = strings.ReplaceAll(s, `"`, `\"`)
	}
	return s, nil
}

func escapeCommand(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
