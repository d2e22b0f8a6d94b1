package enums

import "fmt"

// WaitlistStatus tracks how an administrator resolved a borrow request.
type WaitlistStatus string

const (
	WaitlistStatusPending  WaitlistStatus = "menunggu"
	WaitlistStatusApproved WaitlistStatus = "disetujui"
	WaitlistStatusRejected WaitlistStatus = "ditolak"
)

var validWaitlistStatuses = []WaitlistStatus{
	WaitlistStatusPending,
	WaitlistStatusApproved,
	WaitlistStatusRejected,
}

// String implements fmt.Stringer.
func (s WaitlistStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WaitlistStatus.
func (s WaitlistStatus) IsValid() bool {
	for _, candidate := range validWaitlistStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWaitlistStatus converts raw input into a WaitlistStatus.
func ParseWaitlistStatus(value string) (WaitlistStatus, error) {
	for _, candidate := range validWaitlistStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid waitlist status %q", value)
}
