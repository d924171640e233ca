package sheets

import (
	"context"

	"twonest/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter mirrors a transaction to an external sheet and
	// returns a reference to the written row.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)
