package staffing

import (
	"reflect"
	"testing"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

var engineers = Index([]models.Engineer{
	{ID: "ne", Name: "A", Role: models.RoleNetworkEngineer, TotalCapacity: 40},
	{ID: "we", Name: "B", Role: models.RoleWirelessEngineer, TotalCapacity: 40},
	{ID: "ar", Name: "C", Role: models.RoleArchitect, TotalCapacity: 40},
})

func req(role string, h int) models.ResourcingRequirement {
	return models.ResourcingRequirement{Role: role, HoursPerWeek: h}
}

func alloc(eng string, cat models.Category, h int) models.Allocation {
	return models.Allocation{EngineerID: eng, Category: cat, Hours: h}
}

func TestCompute(t *testing.T) {
	pw := models.CategoryProjectWork

	tests := []struct {
		name      string
		reqs      []models.ResourcingRequirement
		allocs    []models.Allocation
		required  int
		allocated int
		staffed   bool
		roles     []RoleStaffing
	}{
		{
			name:    "draft project with nothing",
			staffed: false,
			roles:   []RoleStaffing{},
		},
		{
			name:      "no requirements with project work",
			allocs:    []models.Allocation{alloc("ne", pw, 5)},
			allocated: 5,
			staffed:   true,
			roles:     []RoleStaffing{},
		},
		{
			name:    "no requirements with only meetings",
			allocs:  []models.Allocation{alloc("ne", models.CategoryMeetings, 5)},
			staffed: false,
			roles:   []RoleStaffing{},
		},
		{
			name:      "single role satisfied",
			reqs:      []models.ResourcingRequirement{req("Network Engineer", 20)},
			allocs:    []models.Allocation{alloc("ne", pw, 20)},
			required:  20,
			allocated: 20,
			staffed:   true,
			roles:     []RoleStaffing{{Role: "Network Engineer", Required: 20, Allocated: 20, IsComplete: true}},
		},
		{
			name:      "single role short",
			reqs:      []models.ResourcingRequirement{req("Network Engineer", 20)},
			allocs:    []models.Allocation{alloc("ne", pw, 10)},
			required:  20,
			allocated: 10,
			roles:     []RoleStaffing{{Role: "Network Engineer", Required: 20, Allocated: 10}},
		},
		{
			name:      "totals match but roles do not",
			reqs:      []models.ResourcingRequirement{req("Network Engineer", 10), req("Architect", 10)},
			allocs:    []models.Allocation{alloc("ne", pw, 20)},
			required:  20,
			allocated: 20,
			roles: []RoleStaffing{
				{Role: "Network Engineer", Required: 10, Allocated: 20, IsComplete: true},
				{Role: "Architect", Required: 10, Allocated: 0},
			},
		},
		{
			name:      "non project work ignored everywhere",
			reqs:      []models.ResourcingRequirement{req("Network Engineer", 10)},
			allocs:    []models.Allocation{alloc("ne", models.CategoryOperationalSupport, 30), alloc("ne", models.CategoryMeetings, 30)},
			required:  10,
			allocated: 0,
			roles:     []RoleStaffing{{Role: "Network Engineer", Required: 10}},
		},
		{
			name:      "role labels are case sensitive",
			reqs:      []models.ResourcingRequirement{req("network engineer", 10)},
			allocs:    []models.Allocation{alloc("ne", pw, 10)},
			required:  10,
			allocated: 10,
			roles:     []RoleStaffing{{Role: "network engineer", Required: 10}},
		},
		{
			name:      "unknown engineer counts toward total only",
			reqs:      []models.ResourcingRequirement{req("Architect", 5)},
			allocs:    []models.Allocation{alloc("ghost", pw, 5)},
			required:  5,
			allocated: 5,
			roles:     []RoleStaffing{{Role: "Architect", Required: 5}},
		},
		{
			name: "repeated roles are summed in first appearance order",
			reqs: []models.ResourcingRequirement{
				req("Wireless Engineer", 5), req("Architect", 5), req("Wireless Engineer", 10),
			},
			allocs:    []models.Allocation{alloc("we", pw, 10), alloc("we", pw, 5), alloc("ar", pw, 5)},
			required:  20,
			allocated: 20,
			staffed:   true,
			roles: []RoleStaffing{
				{Role: "Wireless Engineer", Required: 15, Allocated: 15, IsComplete: true},
				{Role: "Architect", Required: 5, Allocated: 5, IsComplete: true},
			},
		},
		{
			name:      "zero hour requirement is not staffed",
			reqs:      []models.ResourcingRequirement{req("Architect", 0)},
			allocs:    []models.Allocation{alloc("ar", pw, 5)},
			allocated: 5,
			roles:     []RoleStaffing{{Role: "Architect", Allocated: 5, IsComplete: true}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.reqs, tc.allocs, engineers)
			if got.TotalRequired != tc.required {
				t.Fatalf("TotalRequired: expected %d got %d", tc.required, got.TotalRequired)
			}
			if got.TotalAllocated != tc.allocated {
				t.Fatalf("TotalAllocated: expected %d got %d", tc.allocated, got.TotalAllocated)
			}
			if got.IsFullyStaffed != tc.staffed {
				t.Fatalf("IsFullyStaffed: expected %v got %v", tc.staffed, got.IsFullyStaffed)
			}
			if !reflect.DeepEqual(got.Roles, tc.roles) {
				t.Fatalf("Roles: expected %+v got %+v", tc.roles, got.Roles)
			}
		})
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	reqs := []models.ResourcingRequirement{req("Network Engineer", 20), req("Architect", 4)}
	allocs := []models.Allocation{alloc("ne", models.CategoryProjectWork, 20), alloc("ar", models.CategoryProjectWork, 2)}

	first := Compute(reqs, allocs, engineers)
	second := Compute(reqs, allocs, engineers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical reports, got %+v and %+v", first, second)
	}
	if first.IsFullyStaffed {
		t.Fatalf("architect bucket is short; expected not staffed")
	}
}
