package enums

import "fmt"

// PaymentMethod is the normalized method tag recorded once a payment attempt
// exists. The system of record collapses every gateway method onto UPI.
type PaymentMethod string

const (
	PaymentMethodUPI PaymentMethod = "UPI"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodUPI,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// NormalizeGatewayMethod maps a gateway method (card, netbanking, wallet, emi,
// upi) onto the internal tag. Unknown methods fall back to UPI, matching the
// system of record.
func NormalizeGatewayMethod(gatewayMethod string) PaymentMethod {
	switch gatewayMethod {
	case "upi", "card", "netbanking", "wallet", "emi":
		return PaymentMethodUPI
	default:
		return PaymentMethodUPI
	}
}
