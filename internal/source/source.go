package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// Options selects how a source is read.
type Options struct {
	// SheetName picks an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is the 1-based XLSX sheet used when SheetName is empty.
	SheetIndex int
	// HTTPTimeout bounds remote fetches.
	HTTPTimeout time.Duration
}

// Format reads one kind of survey export into a table.
type Format interface {
	CanRead(name string) bool
	// ReadFile loads a local file.
	ReadFile(ctx context.Context, l *survey.Loader, path string, opt Options) (*survey.Table, error)
	// ReadBytes loads content that was fetched or read elsewhere.
	ReadBytes(ctx context.Context, l *survey.Loader, name string, data []byte, opt Options) (*survey.Table, error)
}

var registry []Format

// Register adds a format to the registry. Later registrations are consulted first.
func Register(f Format) {
	registry = append([]Format{f}, registry...)
}

func init() {
	// csv is the fallback, so it is registered first
	Register(csvFormat{})
	Register(xlsxFormat{})
}

// ErrUnsupported indicates no registered format claims a source.
var ErrUnsupported = errors.New("unsupported source format")

func formatFor(name string) (Format, error) {
	for _, f := range registry {
		if f.CanRead(name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
}

// IsURL reports whether arg names an http(s) location.
func IsURL(arg string) bool {
	s := strings.ToLower(arg)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads a local path or http(s) URL through the matching format.
func Load(ctx context.Context, l *survey.Loader, arg string, opt Options) (*survey.Table, error) {
	if IsURL(arg) {
		u, err := url.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("parse url: %w", err)
		}
		name := path.Base(u.Path)
		if name == "" || name == "/" || name == "." {
			name = u.Host
		}
		f, err := formatFor(name)
		if err != nil {
			return nil, err
		}
		data, err := Fetch(ctx, arg, opt.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		return f.ReadBytes(ctx, l, name, data, opt)
	}
	if _, err := os.Stat(arg); err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	f, err := formatFor(filepath.Base(arg))
	if err != nil {
		return nil, err
	}
	return f.ReadFile(ctx, l, arg, opt)
}

// Expand resolves glob patterns to a sorted, de-duplicated list of sources.
// URLs and existing literal paths pass through unchanged.
func Expand(args []string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, arg := range args {
		if IsURL(arg) {
			add(arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			add(m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	return out, nil
}
