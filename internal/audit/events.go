package audit

import (
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// Impact event kinds. Most are combined with a subject by Event.
const (
	ProjectUpdated     = "Project Updated"
	AllocationAdded    = "Allocation Added"
	AllocationUpdated  = "Allocation Updated"
	ResourceRemoved    = "Resource Removed"
	ResourceReleased   = "Resource Released"
	RidAdded           = "RID Entry Added"
	RidUpdated         = "RID Entry Updated"
	RidDeleted         = "RID Entry Deleted"
	DeviceAdded        = "Device Added"
	DeviceUpdated      = "Device Updated"
	DeviceRemoved      = "Device Removed"
	RequirementAdded   = "Requirement Added"
	RequirementUpdated = "Requirement Updated"
	RequirementRemoved = "Requirement Removed"
)

// Event labels an impact entry as "<kind>: <subject>".
func Event(kind, subject string) string {
	return kind + ": " + subject
}

// Promotion labels a RID type change in the direction it happened.
func Promotion(from, to models.RidType) string {
	return fmt.Sprintf("RID Entry Promoted: %s → %s", from, to)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Signed renders n with an explicit sign; zero is "+0".
func Signed(n int) string {
	return fmt.Sprintf("%+d", n)
}
