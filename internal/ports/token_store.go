package ports

import (
	"context"

	"github.com/sana-care/sana-cli/internal/domain"
)

// TokenStore owns the persisted session credential. Load returns
// domain.ErrNotAuthenticated when no complete pair exists; a partial pair is
// never observable. Clear is idempotent.
type TokenStore interface {
	Load(ctx context.Context) (domain.TokenPair, error)
	Save(ctx context.Context, pair domain.TokenPair) error
	Clear(ctx context.Context) error
}
