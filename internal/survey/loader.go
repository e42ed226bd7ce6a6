package survey

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Loader runs the ingestion pipeline under one configuration.
type Loader struct {
	cfg   Config
	fp    string
	cache *Cache
	log   *zap.Logger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithCache shares a cache between loaders. A nil cache disables caching.
func WithCache(c *Cache) Option {
	return func(l *Loader) { l.cache = c }
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader validates cfg and returns a Loader with its own cache unless
// WithCache says otherwise.
func NewLoader(cfg Config, opts ...Option) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Loader{cfg: cfg, fp: cfg.Fingerprint(), cache: NewCache(), log: zap.NewNop()}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// Config returns the loader's configuration.
func (l *Loader) Config() Config { return l.cfg }

// Cache returns the loader's cache, or nil.
func (l *Loader) Cache() *Cache { return l.cache }

// Load reads r fully and normalizes it. The cache key is the content hash.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return l.LoadBytes(ctx, name, data)
}

// LoadBytes normalizes CSV bytes.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (*Table, error) {
	return l.cached(l.contentKey(data), "", name, func() (*Table, error) {
		return l.fromBytes(ctx, name, data)
	})
}

// LoadFile normalizes a CSV file. Files are keyed by path, size and
// modification time, so a cache hit does not touch the file contents.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("source %s is a directory", path)
	}
	prefix := "file:" + abs + "|"
	key := fmt.Sprintf("%s%d|%d|%s", prefix, st.Size(), st.ModTime().UnixNano(), l.fp)
	return l.cached(key, prefix, filepath.Base(abs), func() (*Table, error) {
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		return l.fromBytes(ctx, filepath.Base(abs), data)
	})
}

// LoadRows normalizes rows that are already split into fields, such as a
// spreadsheet sheet. The first row is the header.
func (l *Loader) LoadRows(ctx context.Context, name string, rows [][]string) (*Table, error) {
	h := sha256.New()
	for _, row := range rows {
		for _, f := range row {
			io.WriteString(h, f)
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	key := "rows:" + hex.EncodeToString(h.Sum(nil)) + "|" + l.fp
	return l.cached(key, "", name, func() (*Table, error) {
		if len(rows) == 0 {
			return l.normalize(ctx, key, Summary{Source: name}, nil, nil)
		}
		return l.normalize(ctx, key, Summary{Source: name}, rows[0], rows[1:])
	})
}

func (l *Loader) cached(key, stalePrefix, name string, build func() (*Table, error)) (*Table, error) {
	if l.cache == nil {
		return build()
	}
	if _, ok := l.cache.Get(key); !ok && stalePrefix != "" {
		if n := l.cache.InvalidatePrefix(stalePrefix); n > 0 {
			l.log.Debug("dropped stale entries", zap.String("source", name), zap.Int("count", n))
		}
	}
	t, hit, err := l.cache.Do(key, build)
	if hit {
		l.log.Debug("cache hit", zap.String("source", name), zap.String("table", t.ID()))
	}
	return t, err
}

func (l *Loader) contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:]) + "|" + l.fp
}

func (l *Loader) fromBytes(ctx context.Context, name string, data []byte) (*Table, error) {
	text, enc, err := Decode(name, data, l.cfg.Encodings)
	if err != nil {
		return nil, err
	}
	l.log.Debug("decoded source", zap.String("source", name), zap.String("encoding", enc), zap.Int("bytes", len(data)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, rows, err := parseCSV(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return l.normalize(ctx, l.contentKey(data), Summary{Source: name, Encoding: enc}, header, rows)
}

func (l *Loader) normalize(ctx context.Context, key string, sum Summary, header []string, rows [][]string) (*Table, error) {
	t, err := normalize(ctx, l.cfg, key, sum, header, rows)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", sum.Source, err)
	}
	s := t.Summary()
	l.log.Info("loaded survey",
		zap.String("source", s.Source),
		zap.String("table", t.ID()),
		zap.Int("raw_rows", s.RawRows),
		zap.Int("rows", s.Rows),
		zap.Strings("dropped", s.Dropped),
	)
	for _, w := range s.Warnings {
		l.log.Warn("normalize", zap.String("source", s.Source), zap.String("warning", w))
	}
	for _, e := range t.Errors() {
		l.log.Warn("field error", zap.String("source", s.Source), zap.Error(e))
	}
	return t, nil
}
