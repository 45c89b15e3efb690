package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		ProfileID: "prof-1",
		FamilyID:  "fam-1",
		Role:      "parent",
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.ProfileID != "prof-1" {
		t.Errorf("ProfileID = %q, want %q", got.ProfileID, "prof-1")
	}
	if got.FamilyID != "fam-1" {
		t.Errorf("FamilyID = %q, want %q", got.FamilyID, "fam-1")
	}
	if got.Role != "parent" {
		t.Errorf("Role = %q, want %q", got.Role, "parent")
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestFamilyID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{FamilyID: "fam-42"})
	if FamilyID(ctx) != "fam-42" {
		t.Errorf("FamilyID = %q, want fam-42", FamilyID(ctx))
	}
}

func TestFamilyIDMissing(t *testing.T) {
	if FamilyID(context.Background()) != "" {
		t.Error("expected empty string for missing context")
	}
}

func TestProfileID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{ProfileID: "prof-7"})
	if ProfileID(ctx) != "prof-7" {
		t.Errorf("ProfileID = %q, want prof-7", ProfileID(ctx))
	}
}

func TestIsParent(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: "parent"})
	if !IsParent(ctx) {
		t.Error("expected IsParent = true for parent role")
	}
}

func TestIsParentFalse(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Role: "child"})
	if IsParent(ctx) {
		t.Error("expected IsParent = false for child role")
	}
}

func TestIsParentMissing(t *testing.T) {
	if IsParent(context.Background()) {
		t.Error("expected IsParent = false for missing context")
	}
}
