package source

import (
	"context"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// csvFormat accepts anything no other format claims.
type csvFormat struct{}

func (csvFormat) CanRead(string) bool { return true }

func (csvFormat) ReadFile(ctx context.Context, l *survey.Loader, path string, _ Options) (*survey.Table, error) {
	return l.LoadFile(ctx, path)
}

func (csvFormat) ReadBytes(ctx context.Context, l *survey.Loader, name string, data []byte, _ Options) (*survey.Table, error) {
	return l.LoadBytes(ctx, name, data)
}
