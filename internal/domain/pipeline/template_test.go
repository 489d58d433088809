package pipeline

import (
	"testing"

	"snapfind/internal/common"
)

func TestCopyTree(t *testing.T) {
	jobID := common.NewUUID()
	screening := Stage{ID: common.NewUUID(), JobID: jobID, Name: "Screening", Position: 1, Role: RoleStandard}
	phoneParent := screening.ID
	stages := []Stage{
		{ID: common.NewUUID(), JobID: jobID, Name: "Rejected", Position: 3, Role: RoleTerminalReject},
		{ID: common.NewUUID(), JobID: jobID, Name: "Technical Screen", Position: 1, ParentID: &phoneParent},
		screening,
		{ID: common.NewUUID(), JobID: jobID, Name: "Applied", Position: 0, Role: RoleEntry},
		{ID: common.NewUUID(), JobID: jobID, Name: "Phone Screen", Position: 0, ParentID: &phoneParent},
		{ID: common.NewUUID(), JobID: jobID, Name: "Offer", Position: 2},
	}

	tree := CopyTree(stages)
	if len(tree) != 4 {
		t.Fatalf("expected 4 top-level stages, got %d", len(tree))
	}
	names := []string{tree[0].Name, tree[1].Name, tree[2].Name, tree[3].Name}
	want := []string{"Applied", "Screening", "Offer", "Rejected"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
	if len(tree[1].SubStages) != 2 {
		t.Fatalf("expected 2 sub-stages under Screening, got %d", len(tree[1].SubStages))
	}
	if tree[1].SubStages[0].Name != "Phone Screen" || tree[1].SubStages[1].Name != "Technical Screen" {
		t.Fatalf("sub-stages should sort by position, got %+v", tree[1].SubStages)
	}
	if tree[0].Role != RoleEntry || tree[3].Role != RoleTerminalReject {
		t.Fatal("roles must survive the copy")
	}
	// Rows without a stored role fall back to name-derived roles.
	if tree[2].Role != RoleStandard {
		t.Fatalf("expected standard role for Offer, got %s", tree[2].Role)
	}
}

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		role StageRole
		name string
		want StageRole
	}{
		{RoleEntry, "whatever", RoleEntry},
		{" Terminal_Reject ", "x", RoleTerminalReject},
		{"", "Applied", RoleEntry},
		{"", "rejected", RoleTerminalReject},
		{"", "Hired", RoleTerminalHire},
		{"", "Offer Accepted", RoleTerminalHire},
		{"", "Screening", RoleStandard},
		{"bogus", "new", RoleEntry},
	}
	for _, tc := range cases {
		if got := NormalizeRole(tc.role, tc.name); got != tc.want {
			t.Fatalf("NormalizeRole(%q, %q) = %q, want %q", tc.role, tc.name, got, tc.want)
		}
	}
}

func TestDefaultStages(t *testing.T) {
	stages, err := DefaultStages()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(stages) == 0 {
		t.Fatal("default pipeline must not be empty")
	}
	if stages[0].Role != RoleEntry || !stages[0].IsMandatory {
		t.Fatalf("first default stage should be the mandatory entry stage, got %+v", stages[0])
	}
	var hire, reject bool
	for i, stage := range stages {
		if stage.Position != i {
			t.Fatalf("top-level positions must be contiguous, stage %q at %d", stage.Name, stage.Position)
		}
		switch stage.Role {
		case RoleTerminalHire:
			hire = true
		case RoleTerminalReject:
			reject = true
		}
		for j, sub := range stage.SubStages {
			if sub.Position != j {
				t.Fatalf("sub-stage positions must be contiguous, %q at %d", sub.Name, sub.Position)
			}
		}
	}
	if !hire || !reject {
		t.Fatal("default pipeline needs both terminal stages")
	}
}
