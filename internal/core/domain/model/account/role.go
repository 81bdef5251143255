package account

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Role distinguishes the two kinds of wallet holders.
type Role int

const (
	// RoleUnknown is the zero value and never valid.
	RoleUnknown Role = iota
	// RoleCourier is a courier who receives offers, carries cash and earns per delivery.
	RoleCourier
	// RoleBusiness is a sender that may prepay deliveries from its wallet.
	RoleBusiness
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:  "Unknown",
		RoleCourier:  "Courier",
		RoleBusiness: "Business",
	}
}

// ParseRole converts the textual form used by the HTTP adapter into a Role.
func ParseRole(s string) (Role, error) {
	for role, str := range getRoleStrings() {
		if role != RoleUnknown && str == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

// Validate rejects RoleUnknown and values outside the enum.
func (r Role) Validate() error {
	if r != RoleCourier && r != RoleBusiness {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "Unknown"
}
