// Package offer models the time-boxed proposal of a delivery to a single courier.
//
// An Offer starts Pending and resolves exactly once to Accepted, Expired or
// Rejected. Acceptance at or after expires_at resolves to Expired and fails
// with ErrOfferExpired.
package offer
