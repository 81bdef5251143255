package offer

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Outcome is the resolution of an offer. Only Pending offers can change.
type Outcome int

const (
	// OutcomeUnknown is the zero value and never valid.
	OutcomeUnknown Outcome = iota
	// OutcomePending offers wait for the courier's answer.
	OutcomePending
	// OutcomeAccepted offers turned into an assignment.
	OutcomeAccepted
	// OutcomeExpired offers timed out or lost the race against their deadline.
	OutcomeExpired
	// OutcomeRejected offers were declined by the courier or withdrawn by a cancellation.
	OutcomeRejected
)

func getOutcomeStrings() map[Outcome]string {
	return map[Outcome]string{
		OutcomeUnknown:  "Unknown",
		OutcomePending:  "Pending",
		OutcomeAccepted: "Accepted",
		OutcomeExpired:  "Expired",
		OutcomeRejected: "Rejected",
	}
}

func (o Outcome) Validate() error {
	if o < OutcomePending || o > OutcomeRejected {
		return errs.NewValueIsInvalidErrorWithCause("outcome", fmt.Errorf("%d is not a valid outcome", o))
	}
	return nil
}

func (o Outcome) String() string {
	if str, ok := getOutcomeStrings()[o]; ok {
		return str
	}
	return "Unknown"
}
