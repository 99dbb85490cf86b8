package domain

import "context"

// TxManager runs fn inside a single storage transaction. Repositories called
// with the ctx passed to fn join that transaction, so a group of writes either
// commits together or rolls back together. Implementations return
// ErrEditConflict for serialization failures so callers can retry.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
