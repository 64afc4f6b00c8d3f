// Package staffing derives how well a project is staffed from its
// resourcing requirements and the hours allocated to it.
package staffing

import "github.com/philipcowcer-eng/LoadBalance/pkg/models"

// RoleStaffing is the required versus allocated hours for one role label.
type RoleStaffing struct {
	Role       string `json:"role"`
	Required   int    `json:"required"`
	Allocated  int    `json:"allocated"`
	IsComplete bool   `json:"is_complete"`
}

// Report is the staffing summary of a single project.
type Report struct {
	TotalRequired  int            `json:"total_hours_required"`
	TotalAllocated int            `json:"total_hours_allocated"`
	IsFullyStaffed bool           `json:"is_fully_staffed"`
	Roles          []RoleStaffing `json:"role_staffing"`
}

// Compute builds the report for one project. reqs and allocs must already be
// scoped to that project; engineers resolves allocation owners by id.
//
// Only Project Work allocations count. An allocation fills a role bucket
// when its engineer's role equals the requirement label exactly. Roles are
// reported in order of first appearance in reqs.
func Compute(reqs []models.ResourcingRequirement, allocs []models.Allocation, engineers map[string]models.Engineer) Report {
	rep := Report{Roles: []RoleStaffing{}}

	index := map[string]int{}
	for _, r := range reqs {
		rep.TotalRequired += r.HoursPerWeek
		i, ok := index[r.Role]
		if !ok {
			i = len(rep.Roles)
			index[r.Role] = i
			rep.Roles = append(rep.Roles, RoleStaffing{Role: r.Role})
		}
		rep.Roles[i].Required += r.HoursPerWeek
	}

	projectWork := 0
	for _, a := range allocs {
		if a.Category != models.CategoryProjectWork {
			continue
		}
		projectWork++
		rep.TotalAllocated += a.Hours

		eng, ok := engineers[a.EngineerID]
		if !ok {
			continue
		}
		if i, ok := index[string(eng.Role)]; ok {
			rep.Roles[i].Allocated += a.Hours
		}
	}

	complete := true
	for i := range rep.Roles {
		rep.Roles[i].IsComplete = rep.Roles[i].Allocated >= rep.Roles[i].Required
		complete = complete && rep.Roles[i].IsComplete
	}

	if rep.TotalRequired > 0 {
		rep.IsFullyStaffed = complete
	} else {
		// requirements summing to zero hours still leave the project unstaffed
		rep.IsFullyStaffed = len(reqs) == 0 && projectWork > 0
	}
	return rep
}

// Index keys engineers by id for Compute.
func Index(engineers []models.Engineer) map[string]models.Engineer {
	m := make(map[string]models.Engineer, len(engineers))
	for _, e := range engineers {
		m[e.ID] = e
	}
	return m
}
