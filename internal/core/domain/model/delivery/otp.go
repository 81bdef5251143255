package delivery

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"dispatch/internal/pkg/errs"
)

const otpDigits = 4

var otpSpace = big.NewInt(10000)

// OTP is a 4-digit one-time code handed to the courier at pickup or drop-off.
type OTP struct {
	code string
}

// NewOTP draws a uniformly random code from crypto/rand.
func NewOTP() (OTP, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return OTP{}, fmt.Errorf("generate otp: %w", err)
	}
	return OTP{code: fmt.Sprintf("%0*d", otpDigits, n.Int64())}, nil
}

// OTPFromString validates a stored code.
func OTPFromString(code string) (OTP, error) {
	if !isOTPShape(code) {
		return OTP{}, errs.NewValueIsInvalidErrorWithCause("otp", fmt.Errorf("must be %d digits", otpDigits))
	}
	return OTP{code: code}, nil
}

func (o OTP) String() string {
	return o.code
}

func (o OTP) IsZero() bool {
	return o.code == ""
}

// Matches compares in constant time. A zero OTP matches nothing.
func (o OTP) Matches(code string) bool {
	if o.IsZero() || len(code) != len(o.code) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(o.code), []byte(code)) == 1
}

func isOTPShape(code string) bool {
	if len(code) != otpDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
