package repository

import (
	"context"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Lookups of missing rows return a nil entity and a nil error.

type EngineerRepo interface {
	CreateEngineer(ctx context.Context, e *models.Engineer) error
	GetEngineer(ctx context.Context, id string) (*models.Engineer, error)
	GetEngineerByName(ctx context.Context, name string) (*models.Engineer, error)
	ListEngineers(ctx context.Context) ([]models.Engineer, error)
	UpdateEngineer(ctx context.Context, e *models.Engineer) error
	DeleteEngineer(ctx context.Context, id string) error
}

type ProjectRepo interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectByName(ctx context.Context, name string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
}

type AllocationRepo interface {
	CreateAllocation(ctx context.Context, a *models.Allocation) error
	GetAllocation(ctx context.Context, id string) (*models.Allocation, error)
	ListAllocations(ctx context.Context) ([]models.Allocation, error)
	ListAllocationsByProject(ctx context.Context, projectID string) ([]models.Allocation, error)
	ListAllocationsByEngineer(ctx context.Context, engineerID string) ([]models.Allocation, error)
	UpdateAllocation(ctx context.Context, a *models.Allocation) error
	DeleteAllocation(ctx context.Context, id string) error
	DeleteAllocationsByEngineer(ctx context.Context, engineerID string) (int64, error)
}

type RequirementRepo interface {
	CreateRequirement(ctx context.Context, r *models.ResourcingRequirement) error
	GetRequirement(ctx context.Context, id string) (*models.ResourcingRequirement, error)
	ListRequirements(ctx context.Context) ([]models.ResourcingRequirement, error)
	ListRequirementsByProject(ctx context.Context, projectID string) ([]models.ResourcingRequirement, error)
	UpdateRequirement(ctx context.Context, r *models.ResourcingRequirement) error
	DeleteRequirement(ctx context.Context, id string) error
}

type DeviceRepo interface {
	CreateDevice(ctx context.Context, d *models.ProjectDevice) error
	GetDevice(ctx context.Context, id string) (*models.ProjectDevice, error)
	ListDevices(ctx context.Context) ([]models.ProjectDevice, error)
	ListDevicesByProject(ctx context.Context, projectID string) ([]models.ProjectDevice, error)
	UpdateDevice(ctx context.Context, d *models.ProjectDevice) error
	DeleteDevice(ctx context.Context, id string) error
}

type RidRepo interface {
	CreateRid(ctx context.Context, e *models.RidLogEntry) error
	GetRid(ctx context.Context, id string) (*models.RidLogEntry, error)
	ListRidByProject(ctx context.Context, projectID string) ([]models.RidLogEntry, error)
	UpdateRid(ctx context.Context, e *models.RidLogEntry) error
	DeleteRid(ctx context.Context, id string) error
}

// ImpactLogRepo is append-only.
type ImpactLogRepo interface {
	AppendImpact(ctx context.Context, e *models.ImpactLogEntry) error
	ListImpactByProject(ctx context.Context, projectID string) ([]models.ImpactLogEntry, error)
}

// AuditLogRepo is append-only.
type AuditLogRepo interface {
	AppendAudit(ctx context.Context, e *models.AuditLogEntry) error
	ListAudit(ctx context.Context, f models.AuditFilter) ([]models.AuditLogEntry, error)
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Store aggregates every entity repository and adds transaction control.
type Store interface {
	EngineerRepo
	ProjectRepo
	AllocationRepo
	RequirementRepo
	DeviceRepo
	RidRepo
	ImpactLogRepo
	AuditLogRepo
	UserRepo

	// InTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil.
	InTx(ctx context.Context, fn func(tx Store) error) error
	// Savepoint runs fn inside a nested savepoint. A failing fn rolls back
	// only its own writes; the enclosing transaction stays usable.
	Savepoint(ctx context.Context, name string, fn func() error) error
}
