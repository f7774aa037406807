package assignments_test

import (
	"testing"
	"time"

	"github.com/dalemusser/counselhub/internal/app/store/assignments"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/dalemusser/counselhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counselor := fixtures.CreateUser(ctx, "Test Counselor", "counselor@example.com", models.RoleCounselor, nil)
	member := fixtures.CreateUser(ctx, "Test Member", "member@example.com", models.RoleMember, nil)
	org := fixtures.CreateOrganization(ctx, "Test Org")

	created, err := store.Create(ctx, models.CounselorAssignment{
		CounselorID:    counselor.ID,
		MemberID:       member.ID,
		OrganizationID: org.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.AssignmentActive {
		t.Errorf("Status: got %q, want %q", created.Status, models.AssignmentActive)
	}
	if created.AssignedAt.IsZero() {
		t.Error("expected AssignedAt to be set")
	}
}

func TestStore_Create_DeactivatesPrevious(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	first := fixtures.CreateUser(ctx, "First Counselor", "first@example.com", models.RoleCounselor, nil)
	second := fixtures.CreateUser(ctx, "Second Counselor", "second@example.com", models.RoleCounselor, nil)
	member := fixtures.CreateUser(ctx, "Test Member", "member@example.com", models.RoleMember, nil)
	org := fixtures.CreateOrganization(ctx, "Test Org")

	a1, err := store.Create(ctx, models.CounselorAssignment{
		CounselorID:    first.ID,
		MemberID:       member.ID,
		OrganizationID: org.ID,
	})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	a2, err := store.Create(ctx, models.CounselorAssignment{
		CounselorID:    second.ID,
		MemberID:       member.ID,
		OrganizationID: org.ID,
	})
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	count, err := store.CountActive(ctx, member.ID, org.ID)
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("active assignments: got %d, want 1", count)
	}

	old, err := store.GetByID(ctx, a1.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if old.Status != models.AssignmentInactive {
		t.Errorf("superseded assignment status: got %q, want %q", old.Status, models.AssignmentInactive)
	}
	if old.EndedAt == nil {
		t.Error("expected superseded assignment to have EndedAt set")
	}

	active, err := store.ActiveForMember(ctx, member.ID, org.ID)
	if err != nil {
		t.Fatalf("ActiveForMember failed: %v", err)
	}
	if active == nil || active.ID != a2.ID {
		t.Errorf("expected the new assignment to be the active one")
	}
	// The superseded record survives for history.
	if _, err := store.GetByID(ctx, a1.ID); err != nil {
		t.Errorf("superseded assignment should not be deleted: %v", err)
	}
}

func TestStore_FindActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counselor := fixtures.CreateUser(ctx, "Test Counselor", "counselor@example.com", models.RoleCounselor, nil)
	member := fixtures.CreateUser(ctx, "Test Member", "member@example.com", models.RoleMember, nil)
	org := fixtures.CreateOrganization(ctx, "Test Org")
	otherOrg := fixtures.CreateOrganization(ctx, "Other Org")

	if _, err := store.Create(ctx, models.CounselorAssignment{
		CounselorID:    counselor.ID,
		MemberID:       member.ID,
		OrganizationID: org.ID,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.FindActive(ctx, counselor.ID, member.ID, org.ID)
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find active assignment")
	}

	// Assignments are organization-scoped.
	other, err := store.FindActive(ctx, counselor.ID, member.ID, otherOrg.ID)
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if other != nil {
		t.Error("expected no assignment in a different organization")
	}
}

func TestStore_End(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counselor := fixtures.CreateUser(ctx, "Test Counselor", "counselor@example.com", models.RoleCounselor, nil)
	member := fixtures.CreateUser(ctx, "Test Member", "member@example.com", models.RoleMember, nil)
	org := fixtures.CreateOrganization(ctx, "Test Org")

	created, err := store.Create(ctx, models.CounselorAssignment{
		CounselorID:    counselor.ID,
		MemberID:       member.ID,
		OrganizationID: org.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.End(ctx, created.ID); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	ended, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if ended.Status != models.AssignmentInactive {
		t.Errorf("Status: got %q, want %q", ended.Status, models.AssignmentInactive)
	}
	if ended.EndedAt == nil {
		t.Error("expected EndedAt to be set")
	} else if time.Since(*ended.EndedAt) > time.Minute {
		t.Error("EndedAt is not recent")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_ActiveCounselorIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateUser(ctx, "Test Member", "member@example.com", models.RoleMember, nil)
	orgA := fixtures.CreateOrganization(ctx, "Org A")
	orgB := fixtures.CreateOrganization(ctx, "Org B")
	c1 := fixtures.CreateUser(ctx, "Counselor One", "c1@example.com", models.RoleCounselor, nil)
	c2 := fixtures.CreateUser(ctx, "Counselor Two", "c2@example.com", models.RoleCounselor, nil)

	fixtures.CreateAssignment(ctx, c1.ID, member.ID, orgA.ID)
	fixtures.CreateAssignment(ctx, c2.ID, member.ID, orgB.ID)

	ids, err := store.ActiveCounselorIDs(ctx, member.ID)
	if err != nil {
		t.Fatalf("ActiveCounselorIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("counselor ids: got %d, want 2", len(ids))
	}
}
