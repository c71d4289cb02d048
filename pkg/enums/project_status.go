package enums

import "fmt"

// ProjectStatus is the lifecycle state of a road project.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusDelayed   ProjectStatus = "delayed"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
)

var validProjectStatuses = []ProjectStatus{
	ProjectStatusPlanning,
	ProjectStatusActive,
	ProjectStatusDelayed,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

func (s ProjectStatus) String() string {
	return string(s)
}

func (s ProjectStatus) IsValid() bool {
	for _, candidate := range validProjectStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseProjectStatus(value string) (ProjectStatus, error) {
	for _, candidate := range validProjectStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project status %q", value)
}
