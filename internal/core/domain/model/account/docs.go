// Package account holds the wallet side of the dispatch engine.
//
// The package includes:
//   - Account: the aggregate for couriers and businesses, owning balance, debt
//     ceiling, presence and acceptance history
//   - LedgerEntry: the append-only record emitted by every Credit and Debit
//   - Role and Reason: the closed sets of holder kinds and ledger codes
//
// Key business rules:
//   - balance == Σ LedgerEntry.amount for every account
//   - a courier is assignable only while balance >= -debt_ceiling
//   - debits are never refused for going below the ceiling
//   - a courier holds at most one active delivery
package account
