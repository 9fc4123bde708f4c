package repositories

import (
	"context"
)

// TransactionManager defines how a unit of work spanning several repositories is run.
type TransactionManager interface {
	// WithinTx runs fn as one unit of work. Repository calls made with the ctx handed to fn
	// join the unit of work; returning an error from fn rolls it back.
	//
	// Stores without real transactions run fn directly, so writes made before a failure
	// stay behind and callers must compensate.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
