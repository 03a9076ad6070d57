// Package man retrieves manual pages by invoking the system man(1) command.
package man

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/manparse"
)

// Compile-time interface verification.
var _ manparse.SourceService = (*Source)(nil)

// DefaultWidth is the column width pages are rendered at.
const DefaultWidth = 80

// RunFunc runs a command with extra environment variables and returns its
// standard output.
type RunFunc func(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

// Source implements manparse.SourceService using man(1).
type Source struct {
	// Command is the man executable. Defaults to "man".
	Command string
	Width   int
	Timeout time.Duration

	Run      RunFunc
	ReadFile func(path string) ([]byte, error)
}

// NewSource returns a Source that executes commands on the host.
func NewSource() *Source {
	return &Source{
		Command:  "man",
		Width:    DefaultWidth,
		Timeout:  10 * time.Second,
		Run:      run,
		ReadFile: os.ReadFile,
	}
}

func run(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

var (
	nameRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._+:-]*$`)

	// pathSectionRe recovers the section from a page path such as
	// /usr/share/man/man1/ls.1.gz.
	pathSectionRe = regexp.MustCompile(`\.([1-8])[a-z]*(?:\.(?:gz|bz2|xz|lzma|zst|Z))?$`)
)

// FetchSource locates the page with `man -w` and renders it with the pager
// disabled. The markup source is read from disk; gzip-compressed pages are
// decompressed and other compressions leave Raw empty.
//
// Returns EINVALID for unusable names and ENOTFOUND when man has no entry.
func (s *Source) FetchSource(ctx context.Context, name string, section int) (*manparse.Fetched, error) {
	if !nameRe.MatchString(name) {
		return nil, manparse.Errorf(manparse.EINVALID, "invalid page name %q", name)
	}
	if section < 0 || section > 8 {
		return nil, manparse.Errorf(manparse.EINVALID, "invalid section %d", section)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	args := func(extra ...string) []string {
		out := append([]string(nil), extra...)
		if section > 0 {
			out = append(out, strconv.Itoa(section))
		}
		return append(out, name)
	}

	out, err := s.Run(ctx, nil, s.command(), args("-w")...)
	path := firstLine(out)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	} else if err != nil || path == "" {
		return nil, manparse.Errorf(manparse.ENOTFOUND, "no manual entry for %s", request(name, section))
	}

	key := manparse.DocumentKey{Name: strings.ToLower(name), Section: section}
	if m := pathSectionRe.FindStringSubmatch(filepath.Base(path)); m != nil {
		key.Section, _ = strconv.Atoi(m[1])
	}
	if key.Section == 0 {
		key.Section = 1
	}

	width := s.Width
	if width <= 0 {
		width = DefaultWidth
	}
	env := []string{"MANPAGER=cat", "PAGER=cat", "MANWIDTH=" + strconv.Itoa(width), "MAN_KEEP_FORMATTING=0"}
	rendered, err := s.Run(ctx, env, s.command(), args()...)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", key, err)
	}

	raw, err := s.readSource(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &manparse.Fetched{Key: key, Raw: raw, Rendered: string(rendered)}, nil
}

func (s *Source) command() string {
	if s.Command == "" {
		return "man"
	}
	return s.Command
}

func (s *Source) readSource(path string) (string, error) {
	switch filepath.Ext(path) {
	case ".gz":
		data, err := s.ReadFile(path)
		if err != nil {
			return "", err
		}
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		defer zr.Close()
		text, err := io.ReadAll(zr)
		return string(text), err
	case ".bz2", ".xz", ".lzma", ".zst", ".Z":
		return "", nil
	}
	data, err := s.ReadFile(path)
	return string(data), err
}

func firstLine(b []byte) string {
	line, _, _ := strings.Cut(string(b), "\n")
	return strings.TrimSpace(line)
}

func request(name string, section int) string {
	if section == 0 {
		return name
	}
	return name + "(" + strconv.Itoa(section) + ")"
}
