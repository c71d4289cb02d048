// Package policy is the single place that decides which role may do what.
package policy

import (
	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
)

type Action string

const (
	ActionCreateProject   Action = "project.create"
	ActionUpdateProject   Action = "project.update"
	ActionDeleteProject   Action = "project.delete"
	ActionViewProject     Action = "project.view"
	ActionCreateReport    Action = "report.create"
	ActionSetReportStatus Action = "report.set_status"
	ActionViewReports     Action = "report.view"
	ActionUploadFile      Action = "file.upload"
	ActionViewFile        Action = "file.view"
	ActionViewStats       Action = "stats.view"
	ActionExport          Action = "export.read"
	ActionManageProfile   Action = "profile.manage"
)

// Ownership describes the caller's relation to a project. The zero value means
// "not related".
type Ownership struct {
	IsManager    bool
	IsTeamMember bool
}

// Owns reports whether the caller manages or belongs to the project.
func (o Ownership) Owns() bool {
	return o.IsManager || o.IsTeamMember
}

// Decision is the outcome of Decide; Reason is safe to show to clients.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

var roleGates = map[Action][]enums.Role{
	ActionCreateProject:   {enums.RoleGeneralManager, enums.RoleProjectManager},
	ActionUpdateProject:   {enums.RoleGeneralManager, enums.RoleProjectManager},
	ActionDeleteProject:   {enums.RoleGeneralManager},
	ActionCreateReport:    {enums.RoleEngineer, enums.RoleProjectManager},
	ActionSetReportStatus: {enums.RoleGeneralManager, enums.RoleProjectManager},
}

var denyReasons = map[Action]string{
	ActionCreateProject:   "only managers can create projects",
	ActionUpdateProject:   "only managers can update projects",
	ActionDeleteProject:   "only general managers can delete projects",
	ActionCreateReport:    "only engineers and project managers can create reports",
	ActionSetReportStatus: "only managers can approve reports",
}

// anyAuthenticated actions are open to every identity, known role or not.
var anyAuthenticated = map[Action]bool{
	ActionViewReports:   true,
	ActionUploadFile:    true,
	ActionViewFile:      true,
	ActionViewStats:     true,
	ActionExport:        true,
	ActionManageProfile: true,
}

// Decide maps (role, action, ownership) to allow/deny. Ownership only matters for
// ActionViewProject, where project managers and engineers are limited to projects
// they manage or belong to.
func Decide(role enums.Role, action Action, own Ownership) Decision {
	if anyAuthenticated[action] {
		return allow
	}
	if !role.IsValid() {
		return deny("unknown role")
	}

	if action == ActionViewProject {
		if SeesAllProjects(role) || own.Owns() {
			return allow
		}
		return deny("not assigned to this project")
	}

	roles, ok := roleGates[action]
	if !ok {
		return deny("unknown action")
	}
	for _, r := range roles {
		if r == role {
			return allow
		}
	}
	return deny(denyReasons[action])
}

// SeesAllProjects reports whether role bypasses the project ownership filter.
func SeesAllProjects(role enums.Role) bool {
	return role == enums.RoleGeneralManager || role == enums.RoleObserver
}

// Require is Decide for callers that only need an error: nil when allowed, a
// FORBIDDEN error carrying the deny reason otherwise.
func Require(role enums.Role, action Action, own Ownership) error {
	d := Decide(role, action, own)
	if d.Allowed {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, d.Reason)
}
