// Package delivery implements the delivery lifecycle.
//
// The package includes:
//   - Delivery: the aggregate root with pricing, OTPs and timestamps
//   - Status: the state machine Pending -> Assigned -> PickedUp -> InTransit -> Completed,
//     with Cancelled from any non-final state and Assigned -> Pending on release
//   - Pricing: the fare split frozen at creation
//   - OTP: random 4-digit codes checked at pickup and drop-off
//   - PaymentMethod: CASH_P2P or PREPAID_WALLET
package delivery
