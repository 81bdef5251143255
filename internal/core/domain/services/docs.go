// Package services holds the domain services of the dispatch engine, the
// logic that spans accounts, deliveries and offers.
//
// The package includes:
//   - PricingCalculator: distance to frozen fare split
//   - CourierMatcher: expanding-radius candidate search and ranking
//   - SettlementEngine: ledger postings for each delivery transition
package services
