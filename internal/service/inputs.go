package service

import "github.com/philipcowcer-eng/LoadBalance/pkg/models"

// Create and replace payloads. Optional fields are pointers so that
// defaults can be applied when they are omitted.

type EngineerInput struct {
	Name          string      `json:"name"`
	Role          models.Role `json:"role"`
	TotalCapacity *int        `json:"total_capacity"`
	KtloTax       *int        `json:"ktlo_tax"`
}

type ProjectInput struct {
	Name                  string                 `json:"name"`
	ProjectNumber         *string                `json:"project_number"`
	ProjectSite           *string                `json:"project_site"`
	Priority              models.Priority        `json:"priority"`
	Status                *models.ProjectStatus  `json:"status"`
	OwnerID               *string                `json:"owner_id"`
	ManagerID             *string                `json:"manager_id"`
	RagStatus             *models.RagStatus      `json:"rag_status"`
	RagReason             *string                `json:"rag_reason"`
	PercentComplete       *int                   `json:"percent_complete"`
	BusinessJustification *string                `json:"business_justification"`
	StartDate             *string                `json:"start_date"`
	TargetEndDate         *string                `json:"target_end_date"`
	WorkflowStatus        *models.WorkflowStatus `json:"workflow_status"`
	ProjectType           *string                `json:"project_type"`
	Size                  *string                `json:"size"`
	FiscalYear            *string                `json:"fiscal_year"`
	DeviceCount           *int                   `json:"device_count"`
	DeviceType            *string                `json:"device_type"`
}

// ProjectAllocationInput adds an engineer to a project as Project Work on
// Monday. Role is only descriptive and defaults to the engineer's role.
type ProjectAllocationInput struct {
	EngineerID   string  `json:"engineer_id" validate:"required"`
	Role         *string `json:"role"`
	HoursPerWeek int     `json:"hours_per_week" validate:"min=2,max=40"`
}

type AllocationInput struct {
	EngineerID     string                 `json:"engineer_id"`
	ProjectID      string                 `json:"project_id"`
	Category       models.Category        `json:"category"`
	Day            models.Day             `json:"day"`
	Hours          int                    `json:"hours"`
	FeedbackStatus *models.FeedbackStatus `json:"feedback_status"`
}

type RequirementInput struct {
	Role          string `json:"role"`
	HoursPerWeek  int    `json:"hours_per_week"`
	DurationWeeks *int   `json:"duration_weeks"`
}

type DeviceInput struct {
	DeviceType  string `json:"device_type"`
	CurrentQty  *int   `json:"current_qty"`
	ProposedQty *int   `json:"proposed_qty" validate:"required"`
}

type RidInput struct {
	Type        models.RidType    `json:"type"`
	Description string            `json:"description"`
	Severity    *models.Severity  `json:"severity"`
	Owner       *string           `json:"owner"`
	Status      *models.RidStatus `json:"status"`
}
