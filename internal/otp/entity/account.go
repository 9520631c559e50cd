package entity

// AccountStatus mirrors the status column owned by user management. The OTP
// flow reads it but does not gate on it.
type AccountStatus int16

const (
	AccountStatusUnknown  AccountStatus = 0
	AccountStatusActive   AccountStatus = 1
	AccountStatusInactive AccountStatus = 2
)

func (s AccountStatus) String() string {
	switch s {
	case AccountStatusActive:
		return "Active"
	case AccountStatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

type Account struct {
	ID       int64
	Email    string
	FullName string
	Status   AccountStatus
}
