package models

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps are unix milliseconds; calendar dates are YYYY-MM-DD strings.

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type Engineer struct {
	ID            string `json:"id" db:"id"`
	Name          string `json:"name" db:"name" validate:"required,max=200"`
	Role          Role   `json:"role" db:"role" validate:"enum"`
	TotalCapacity int    `json:"total_capacity" db:"total_capacity" validate:"min=0,max=168"`
	KtloTax       int    `json:"ktlo_tax" db:"ktlo_tax" validate:"min=0,max=168"`
}

// EffectiveCapacity is the weekly capacity left after KTLO work. It may be
// negative.
func (e Engineer) EffectiveCapacity() int {
	return e.TotalCapacity - e.KtloTax
}

type Project struct {
	ID                    string         `json:"id" db:"id"`
	Name                  string         `json:"name" db:"name" validate:"required,max=200"`
	ProjectNumber         *string        `json:"project_number" db:"project_number" validate:"omitempty,max=100"`
	ProjectSite           *string        `json:"project_site" db:"project_site" validate:"omitempty,max=500"`
	Priority              Priority       `json:"priority" db:"priority" validate:"enum"`
	Status                ProjectStatus  `json:"status" db:"status" validate:"enum"`
	OwnerID               *string        `json:"owner_id" db:"owner_id"`
	ManagerID             *string        `json:"manager_id" db:"manager_id"`
	RagStatus             RagStatus      `json:"rag_status" db:"rag_status" validate:"enum"`
	RagReason             *string        `json:"rag_reason" db:"rag_reason"`
	PercentComplete       int            `json:"percent_complete" db:"percent_complete" validate:"min=0,max=100"`
	BusinessJustification *string        `json:"business_justification" db:"business_justification" validate:"omitempty,max=2000"`
	StartDate             *string        `json:"start_date" db:"start_date" validate:"omitempty,datetime=2006-01-02"`
	TargetEndDate         *string        `json:"target_end_date" db:"target_end_date" validate:"omitempty,datetime=2006-01-02"`
	WorkflowStatus        WorkflowStatus `json:"workflow_status" db:"workflow_status" validate:"enum"`
	ProjectType           *string        `json:"project_type" db:"project_type"`
	Size                  *string        `json:"size" db:"size"`
	FiscalYear            *string        `json:"fiscal_year" db:"fiscal_year"`
	DeviceCount           int            `json:"device_count" db:"device_count" validate:"min=0"`
	DeviceType            *string        `json:"device_type" db:"device_type"`
	LatestStatusUpdate    *string        `json:"latest_status_update" db:"latest_status_update"`
	StatusUpdatedAt       *int64         `json:"status_updated_at" db:"status_updated_at"`
	CreatedAt             int64          `json:"created_at" db:"created_at"`
	UpdatedAt             int64          `json:"updated_at" db:"updated_at"`
}

type Allocation struct {
	ID             string         `json:"id" db:"id"`
	EngineerID     string         `json:"engineer_id" db:"engineer_id" validate:"required"`
	ProjectID      string         `json:"project_id" db:"project_id" validate:"required"`
	Category       Category       `json:"category" db:"category" validate:"enum"`
	Day            Day            `json:"day" db:"day" validate:"enum"`
	Hours          int            `json:"hours" db:"hours" validate:"min=1,max=40"`
	FeedbackStatus FeedbackStatus `json:"feedback_status" db:"feedback_status" validate:"enum"`
}

type ResourcingRequirement struct {
	ID            string `json:"id" db:"id"`
	ProjectID     string `json:"project_id" db:"project_id"`
	Role          string `json:"role" db:"role" validate:"required,max=100"`
	HoursPerWeek  int    `json:"hours_per_week" db:"hours_per_week" validate:"min=1,max=40"`
	DurationWeeks *int   `json:"duration_weeks" db:"duration_weeks" validate:"omitempty,min=1"`
	CreatedAt     int64  `json:"created_at" db:"created_at"`
}

type ProjectDevice struct {
	ID          string `json:"id" db:"id"`
	ProjectID   string `json:"project_id" db:"project_id"`
	DeviceType  string `json:"device_type" db:"device_type" validate:"required,max=100"`
	CurrentQty  int    `json:"current_qty" db:"current_qty" validate:"min=0"`
	ProposedQty int    `json:"proposed_qty" db:"proposed_qty" validate:"min=0"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}

func (d ProjectDevice) NetChange() int {
	return d.ProposedQty - d.CurrentQty
}

// RidLogEntry is a risk, issue or decision raised on a project.
// PreviousType holds only the type before the most recent change.
type RidLogEntry struct {
	ID           string    `json:"id" db:"id"`
	ProjectID    string    `json:"project_id" db:"project_id"`
	Type         RidType   `json:"type" db:"type" validate:"enum"`
	Description  string    `json:"description" db:"description" validate:"min=10"`
	Severity     *Severity `json:"severity" db:"severity" validate:"omitempty,enum"`
	Owner        *string   `json:"owner" db:"owner"`
	Status       RidStatus `json:"status" db:"status" validate:"enum"`
	PreviousType *RidType  `json:"previous_type" db:"previous_type"`
	CreatedAt    int64     `json:"created_at" db:"created_at"`
	UpdatedAt    int64     `json:"updated_at" db:"updated_at"`
}

type ImpactLogEntry struct {
	ID        string  `json:"id" db:"id"`
	ProjectID string  `json:"project_id" db:"project_id"`
	Date      int64   `json:"date" db:"date"`
	Event     string  `json:"event" db:"event"`
	Reason    *string `json:"reason" db:"reason"`
}

type AuditLogEntry struct {
	ID           string  `json:"id" db:"id"`
	Timestamp    int64   `json:"timestamp" db:"timestamp"`
	UserID       string  `json:"user_id" db:"user_id"`
	Username     string  `json:"username" db:"username"`
	Action       string  `json:"action" db:"action"`
	ResourceType string  `json:"resource_type" db:"resource_type"`
	ResourceID   *string `json:"resource_id" db:"resource_id"`
	Details      *string `json:"details" db:"details"`
	IPAddress    *string `json:"ip_address" db:"ip_address"`
}

type User struct {
	ID           string   `json:"id" db:"id"`
	Username     string   `json:"username" db:"username" validate:"required,max=50"`
	PasswordHash string   `json:"-" db:"password_hash"`
	Role         UserRole `json:"role" db:"role" validate:"enum"`
	CreatedAt    int64    `json:"created_at" db:"created_at"`
}

// AuditFilter narrows an audit log listing.
type AuditFilter struct {
	ResourceType string
	Limit        int
	Offset       int
}
