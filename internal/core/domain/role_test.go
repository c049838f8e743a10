package domain

import "testing"

func TestRole_Levels(t *testing.T) {
	if RoleViewer.Level() != 1 {
		t.Fatalf("viewer level = %d, want 1", RoleViewer.Level())
	}
	if RoleEditor.Level() != 2 {
		t.Fatalf("editor level = %d, want 2", RoleEditor.Level())
	}
	if RoleAdmin.Level() != 3 {
		t.Fatalf("admin level = %d, want 3", RoleAdmin.Level())
	}
	if RoleSuperAdmin.Level() != 4 {
		t.Fatalf("super_admin level = %d, want 4", RoleSuperAdmin.Level())
	}
}

func TestRole_Satisfies_MatchesLevels(t *testing.T) {
	for _, actual := range Roles() {
		for _, required := range Roles() {
			want := actual.Level() >= required.Level()
			if got := actual.Satisfies(required); got != want {
				t.Fatalf("Satisfies(%s, %s) = %v, want %v", actual, required, got, want)
			}
		}
	}
}

func TestRole_UnknownMapsToZero(t *testing.T) {
	unknown := ParseRole("moderator")
	if unknown.Level() != 0 {
		t.Fatalf("unknown role level = %d, want 0", unknown.Level())
	}
	if unknown.Valid() {
		t.Fatalf("unknown role reported valid")
	}
	if unknown.Satisfies(RoleViewer) {
		t.Fatalf("unknown role must not satisfy viewer")
	}
	if Role("").Satisfies(RoleViewer) {
		t.Fatalf("empty role must not satisfy viewer")
	}
	// Even an unknown role satisfies an empty requirement (level 0 >= 0);
	// callers gate on identity presence separately.
	if !unknown.Satisfies("") {
		t.Fatalf("level 0 should satisfy a level-0 requirement")
	}
}
