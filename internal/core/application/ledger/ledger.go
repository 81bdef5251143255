// Package ledger is the only writer of wallet balances. It locks accounts in
// a fixed order, turns settlement postings into Credit/Debit calls and appends
// the resulting entries, all inside the caller's unit of work.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Accounts is a set of row-locked accounts keyed by id.
type Accounts map[kernel.UUID]*account.Account

// Get returns the locked account or an ObjectNotFoundError if it was not locked.
func (a Accounts) Get(id kernel.UUID) (*account.Account, error) {
	acc, ok := a[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("locked account", id.String())
	}
	return acc, nil
}

// Sorted returns the accounts in ascending id order.
func (a Accounts) Sorted() []*account.Account {
	out := make([]*account.Account, 0, len(a))
	for _, acc := range a {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })
	return out
}

// Lock row-locks the given accounts in ascending id order. Duplicates are
// locked once. It must run after the delivery and offer rows were locked.
func Lock(ctx context.Context, repo ports.AccountRepository, ids ...kernel.UUID) (Accounts, error) {
	unique := make([]kernel.UUID, 0, len(ids))
	seen := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Less(unique[j]) })

	locked := make(Accounts, len(unique))
	for _, id := range unique {
		acc, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	return locked, nil
}

// PostingAccounts lists the accounts touched by postings.
func PostingAccounts(postings []services.Posting) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(postings))
	for _, p := range postings {
		ids = append(ids, p.AccountID)
	}
	return ids
}

// Post applies postings to already locked accounts and appends one entry per
// posting. The accounts themselves are not saved; the caller updates each
// locked account once before committing.
func Post(
	ctx context.Context,
	entries ports.LedgerRepository,
	accounts Accounts,
	at time.Time,
	postings ...services.Posting,
) ([]*account.LedgerEntry, error) {
	posted := make([]*account.LedgerEntry, 0, len(postings))
	for _, p := range postings {
		acc, err := accounts.Get(p.AccountID)
		if err != nil {
			return nil, err
		}

		deliveryID := p.DeliveryID
		var entry *account.LedgerEntry
		switch p.Direction {
		case services.Credit:
			entry, err = acc.Credit(p.Amount, p.Reason, &deliveryID, at)
		case services.Debit:
			entry, err = acc.Debit(p.Amount, p.Reason, &deliveryID, at)
		default:
			err = errs.NewValueIsInvalidErrorWithCause("direction", fmt.Errorf("%d is not a posting direction", p.Direction))
		}
		if err != nil {
			return nil, err
		}

		if err := entries.Append(ctx, entry); err != nil {
			return nil, err
		}
		posted = append(posted, entry)
	}
	return posted, nil
}

// SaveAll updates every locked account in ascending id order.
func SaveAll(ctx context.Context, repo ports.AccountRepository, accounts Accounts) error {
	for _, acc := range accounts.Sorted() {
		if err := repo.Update(ctx, acc); err != nil {
			return err
		}
	}
	return nil
}
