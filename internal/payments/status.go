package payments

import "github.com/pgroom/pgroom-backend/pkg/enums"

// allowedTransitions is the full edge set of the payment state machine.
// Refund targets are reachable only once money has actually moved, and
// Failed only before it has; Failed and Refunded are terminal.
var allowedTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusPending: {
		enums.PaymentStatusAuthorized,
		enums.PaymentStatusCaptured,
		enums.PaymentStatusFailed,
	},
	enums.PaymentStatusAuthorized: {
		enums.PaymentStatusCaptured,
		enums.PaymentStatusFailed,
	},
	enums.PaymentStatusCaptured: {
		enums.PaymentStatusPartiallyRefunded,
		enums.PaymentStatusRefunded,
	},
	enums.PaymentStatusPartiallyRefunded: {
		enums.PaymentStatusRefunded,
	},
}

// CanTransition reports whether a payment may move from one status to
// another. Writes along any edge outside the map are rejected, which keeps
// out-of-order webhook deliveries harmless.
func CanTransition(from, to enums.PaymentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedPredecessors lists the statuses a row may hold for a transition to
// the target status to apply. Used as the guard set for conditional writes.
func AllowedPredecessors(to enums.PaymentStatus) []enums.PaymentStatus {
	var from []enums.PaymentStatus
	for _, candidate := range []enums.PaymentStatus{
		enums.PaymentStatusPending,
		enums.PaymentStatusAuthorized,
		enums.PaymentStatusCaptured,
		enums.PaymentStatusFailed,
		enums.PaymentStatusRefunded,
		enums.PaymentStatusPartiallyRefunded,
	} {
		if CanTransition(candidate, to) {
			from = append(from, candidate)
		}
	}
	return from
}
