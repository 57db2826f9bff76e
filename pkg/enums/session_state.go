package enums

// SessionState tracks the reconciliation status of the current identity.
type SessionState string

const (
	SessionStateUnknown   SessionState = "unknown"
	SessionStateAnonymous SessionState = "anonymous"
	SessionStateBuyer     SessionState = "buyer"
	SessionStateSeller    SessionState = "seller"
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SessionState.
func (s SessionState) IsValid() bool {
	switch s {
	case SessionStateUnknown, SessionStateAnonymous, SessionStateBuyer, SessionStateSeller:
		return true
	}
	return false
}
