package models

// Role is an engineer's job role.
type Role string

const (
	RoleNetworkEngineer  Role = "Network Engineer"
	RoleWirelessEngineer Role = "Wireless Engineer"
	RoleProjectManager   Role = "Project Manager"
	RoleArchitect        Role = "Architect"
)

var Roles = []Role{RoleNetworkEngineer, RoleWirelessEngineer, RoleProjectManager, RoleArchitect}

func (r Role) Valid() bool { return oneOf(r, Roles) }

type Priority string

const (
	PriorityCritical  Priority = "P1-Critical"
	PriorityStrategic Priority = "P2-Strategic"
	PriorityStandard  Priority = "P3-Standard"
	PriorityLow       Priority = "P4-Low"
)

var Priorities = []Priority{PriorityCritical, PriorityStrategic, PriorityStandard, PriorityLow}

func (p Priority) Valid() bool { return oneOf(p, Priorities) }

type ProjectStatus string

const (
	ProjectHealthy       ProjectStatus = "Healthy"
	ProjectAtRisk        ProjectStatus = "At Risk"
	ProjectDeprioritized ProjectStatus = "Deprioritized"
)

var ProjectStatuses = []ProjectStatus{ProjectHealthy, ProjectAtRisk, ProjectDeprioritized}

func (s ProjectStatus) Valid() bool { return oneOf(s, ProjectStatuses) }

type RagStatus string

const (
	RagGreen RagStatus = "Green"
	RagAmber RagStatus = "Amber"
	RagRed   RagStatus = "Red"
	RagIssue RagStatus = "Issue"
)

var RagStatuses = []RagStatus{RagGreen, RagAmber, RagRed, RagIssue}

func (s RagStatus) Valid() bool { return oneOf(s, RagStatuses) }

// WorkflowStatus values are ordered as a lifecycle but any value may be set
// at any time.
type WorkflowStatus string

const (
	WorkflowDraft           WorkflowStatus = "Draft"
	WorkflowPendingApproval WorkflowStatus = "Pending Approval"
	WorkflowApproved        WorkflowStatus = "Approved"
	WorkflowActive          WorkflowStatus = "Active"
	WorkflowOnHold          WorkflowStatus = "On Hold"
	WorkflowComplete        WorkflowStatus = "Complete"
	WorkflowCancelled       WorkflowStatus = "Cancelled"
)

var WorkflowStatuses = []WorkflowStatus{
	WorkflowDraft, WorkflowPendingApproval, WorkflowApproved, WorkflowActive,
	WorkflowOnHold, WorkflowComplete, WorkflowCancelled,
}

func (s WorkflowStatus) Valid() bool { return oneOf(s, WorkflowStatuses) }

type RidType string

const (
	RidRisk     RidType = "Risk"
	RidIssue    RidType = "Issue"
	RidDecision RidType = "Decision"
)

var RidTypes = []RidType{RidRisk, RidIssue, RidDecision}

func (t RidType) Valid() bool { return oneOf(t, RidTypes) }

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

func (s Severity) Valid() bool { return oneOf(s, Severities) }

type RidStatus string

const (
	RidOpen     RidStatus = "Open"
	RidResolved RidStatus = "Resolved"
	RidClosed   RidStatus = "Closed"
)

var RidStatuses = []RidStatus{RidOpen, RidResolved, RidClosed}

func (s RidStatus) Valid() bool { return oneOf(s, RidStatuses) }

// Category classifies allocated hours. Only CategoryProjectWork counts
// toward staffing.
type Category string

const (
	CategoryProjectWork        Category = "Project Work"
	CategoryOperationalSupport Category = "Operational Support"
	CategoryMeetings           Category = "Meetings"
)

var Categories = []Category{CategoryProjectWork, CategoryOperationalSupport, CategoryMeetings}

func (c Category) Valid() bool { return oneOf(c, Categories) }

type Day string

const (
	Mon Day = "Mon"
	Tue Day = "Tue"
	Wed Day = "Wed"
	Thu Day = "Thu"
	Fri Day = "Fri"
)

var Days = []Day{Mon, Tue, Wed, Thu, Fri}

func (d Day) Valid() bool { return oneOf(d, Days) }

type FeedbackStatus string

const (
	FeedbackNone           FeedbackStatus = "None"
	FeedbackUnderestimated FeedbackStatus = "Underestimated"
	FeedbackOverestimated  FeedbackStatus = "Overestimated"
)

var FeedbackStatuses = []FeedbackStatus{FeedbackNone, FeedbackUnderestimated, FeedbackOverestimated}

func (s FeedbackStatus) Valid() bool { return oneOf(s, FeedbackStatuses) }

// UserRole gates access to administrative endpoints.
type UserRole string

const (
	UserAdmin           UserRole = "admin"
	UserResourceManager UserRole = "resource_manager"
	UserProjectManager  UserRole = "project_manager"
	UserEngineer        UserRole = "engineer"
)

var UserRoles = []UserRole{UserAdmin, UserResourceManager, UserProjectManager, UserEngineer}

func (r UserRole) Valid() bool { return oneOf(r, UserRoles) }

func oneOf[T comparable](v T, set []T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Strings returns the string form of an enum value set, for schemas and
// error messages.
func Strings[T ~string](set []T) []string {
	out := make([]string, len(set))
	for i, v := range set {
		out[i] = string(v)
	}
	return out
}
