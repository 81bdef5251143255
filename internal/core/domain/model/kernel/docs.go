// Package kernel provides the shared value objects of the dispatch domain.
//
// The package includes:
//   - UUID: identifier for accounts, deliveries, offers and ledger entries
//   - Location: a validated latitude/longitude point with haversine distance
//   - Money helpers: decimal rounding rules for XAF amounts
//
// All values are immutable and safe for concurrent use. Zero values are invalid
// and fail Validate.
package kernel
