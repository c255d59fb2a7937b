package Ledger

import (
	"context"

	"golang.org/x/exp/slices"

	"Gaadi/Store"
)

// TransactionsByPerson loads a person's ledger history ordered by
// transaction date descending, ties broken by creation timestamp
// descending. A person with no entries yields an empty slice, not an
// error. Read-only and side-effect free; callers invoke it lazily.
func TransactionsByPerson(ctx context.Context, s Store.Store, personID string) ([]PersonTransaction, error) {
	docs, err := s.Query(ctx, CollectionTransactions,
		[]Store.Filter{{Field: "personRef", Op: "==", Value: personID}},
		&Store.Order{Field: "date", Desc: true})
	if err != nil {
		return nil, &LoadError{Op: "load transactions for " + personID, Cause: err}
	}

	entries := make([]PersonTransaction, 0, len(docs))
	for _, doc := range docs {
		var t PersonTransaction
		if err := doc.Decode(&t); err != nil {
			return nil, &LoadError{Op: "decode transaction for " + personID, Cause: err}
		}
		entries = append(entries, t)
	}

	// The store only orders on one field; settle ties locally.
	slices.SortStableFunc(entries, func(a, b PersonTransaction) int {
		if !a.Date.Equal(b.Date) {
			if a.Date.After(b.Date) {
				return -1
			}
			return 1
		}
		switch {
		case a.CreatedAt.After(b.CreatedAt):
			return -1
		case b.CreatedAt.After(a.CreatedAt):
			return 1
		default:
			return 0
		}
	})
	return entries, nil
}
