package policy

import (
	"testing"

	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
)

var allRoles = []enums.Role{
	enums.RoleGeneralManager,
	enums.RoleProjectManager,
	enums.RoleEngineer,
	enums.RoleObserver,
}

func TestDecideRoleGates(t *testing.T) {
	expect := map[Action][]enums.Role{
		ActionCreateProject:   {enums.RoleGeneralManager, enums.RoleProjectManager},
		ActionUpdateProject:   {enums.RoleGeneralManager, enums.RoleProjectManager},
		ActionDeleteProject:   {enums.RoleGeneralManager},
		ActionCreateReport:    {enums.RoleEngineer, enums.RoleProjectManager},
		ActionSetReportStatus: {enums.RoleGeneralManager, enums.RoleProjectManager},
	}

	for action, allowed := range expect {
		allowedSet := map[enums.Role]bool{}
		for _, r := range allowed {
			allowedSet[r] = true
		}
		for _, role := range allRoles {
			got := Decide(role, action, Ownership{})
			if got.Allowed != allowedSet[role] {
				t.Errorf("Decide(%s, %s) allowed=%v, want %v", role, action, got.Allowed, allowedSet[role])
			}
			if !got.Allowed && got.Reason == "" {
				t.Errorf("Decide(%s, %s) denied without a reason", role, action)
			}
		}
	}
}

func TestUpdateProjectIgnoresOwnership(t *testing.T) {
	if !Decide(enums.RoleProjectManager, ActionUpdateProject, Ownership{}).Allowed {
		t.Fatal("project managers may update any project")
	}
}

func TestViewProjectOwnership(t *testing.T) {
	cases := []struct {
		role  enums.Role
		own   Ownership
		allow bool
	}{
		{enums.RoleGeneralManager, Ownership{}, true},
		{enums.RoleObserver, Ownership{}, true},
		{enums.RoleProjectManager, Ownership{}, false},
		{enums.RoleProjectManager, Ownership{IsManager: true}, true},
		{enums.RoleEngineer, Ownership{IsTeamMember: true}, true},
		{enums.RoleEngineer, Ownership{}, false},
	}
	for _, tc := range cases {
		if got := Decide(tc.role, ActionViewProject, tc.own); got.Allowed != tc.allow {
			t.Errorf("view project role=%s own=%+v allowed=%v want %v", tc.role, tc.own, got.Allowed, tc.allow)
		}
	}
}

func TestAnyAuthenticatedActions(t *testing.T) {
	roles := append([]enums.Role{"contractor"}, allRoles...)
	for _, action := range []Action{ActionUploadFile, ActionViewFile, ActionViewStats, ActionViewReports, ActionExport, ActionManageProfile} {
		for _, role := range roles {
			if !Decide(role, action, Ownership{}).Allowed {
				t.Errorf("expected %s allowed for %q", action, role)
			}
		}
	}
}

func TestUnknownRoleDeniedGatedActions(t *testing.T) {
	for _, action := range []Action{ActionCreateProject, ActionDeleteProject, ActionViewProject, ActionCreateReport} {
		if Decide("contractor", action, Ownership{IsManager: true}).Allowed {
			t.Errorf("unknown role should be denied %s", action)
		}
	}
	if Decide(enums.RoleGeneralManager, "project.archive", Ownership{}).Allowed {
		t.Error("unknown action must be denied")
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	if err := Require(enums.RoleGeneralManager, ActionDeleteProject, Ownership{}); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
	err := Require(enums.RoleObserver, ActionCreateProject, Ownership{})
	if !pkgerrors.Is(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if err.Error() == "" {
		t.Fatal("expected deny reason in message")
	}
}
