package core

import (
	"context"
	"io"
)

// Export writes a CAR containing every collection and document in the store to the given io.Writer.
func (s *Store) Export(ctx context.Context, out io.Writer) error {
	return s.links.Export(ctx, s.RootLink(), out)
}
