package service

import (
	"context"
	"testing"

	"github.com/spec-kit/canine-care-service/internal/cache"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

func newPetServiceForTest() (*PetService, events.Dispatcher) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewPetService(PetDependencies{
		DogRepo:        memory.NewDogRepository(),
		ProtocolRepo:   memory.NewProtocolRepository(),
		SubmissionRepo: memory.NewSubmissionRepository(),
		Snapshots:      cache.NewMemorySnapshotCache(),
		Dispatcher:     dispatcher,
	})
	return svc, dispatcher
}

func TestAddDogCreatesProtocolAndSelects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()

	dog, err := svc.AddDog(ctx, "user-1", DogCreateInput{
		Name:     "  Bella ",
		Breed:    "Labrador",
		WeightKG: 24.5,
		Symptoms: []string{domain.SymptomItching},
	})
	if err != nil {
		t.Fatalf("AddDog: %v", err)
	}
	if dog.Name != "Bella" {
		t.Errorf("name = %q, want trimmed", dog.Name)
	}
	if dog.LastProtocolID == nil || dog.LastSubmissionID == nil {
		t.Fatalf("back-references not set: %+v", dog)
	}

	history, err := svc.GetProtocolHistory(ctx, "user-1", dog.ID)
	if err != nil {
		t.Fatalf("GetProtocolHistory: %v", err)
	}
	if len(history) != 1 || history[0].Version != 1 {
		t.Fatalf("history = %+v, want a single version 1 protocol", history)
	}

	selected, err := svc.SelectedDog(ctx, "user-1")
	if err != nil {
		t.Fatalf("SelectedDog: %v", err)
	}
	if selected.ID != dog.ID {
		t.Errorf("selected = %s, want the new dog %s", selected.ID, dog.ID)
	}

	submission, err := svc.GetLastDiagnosisSubmission(ctx, "user-1", dog.ID)
	if err != nil || submission == nil {
		t.Fatalf("GetLastDiagnosisSubmission: %v, %v", submission, err)
	}
	if submission.Status != domain.SubmissionPending {
		t.Errorf("intake submission status = %q, want pending", submission.Status)
	}
	if submission.Snapshot.Name != "Bella" {
		t.Errorf("snapshot = %+v, want the dog's state frozen in", submission.Snapshot)
	}
}

func TestAddDogRejectsEmptyAndDuplicateNames(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()

	if _, err := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "   "}); err == nil {
		t.Fatal("blank name should fail validation")
	}

	if _, err := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Rex"}); err != nil {
		t.Fatalf("AddDog: %v", err)
	}
	_, err := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "rex"})
	if err == nil {
		t.Fatal("duplicate name should conflict")
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("err code = %q, want CONFLICT", apperrors.ToDomainError(err).Code)
	}

	// Another owner can reuse the name.
	if _, err := svc.AddDog(ctx, "user-2", DogCreateInput{Name: "Rex"}); err != nil {
		t.Fatalf("AddDog for second owner: %v", err)
	}
}

func TestSelectDogIgnoresUnknownAndForeignDogs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()

	first, _ := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Bella"})
	second, _ := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Rex"})
	foreign, _ := svc.AddDog(ctx, "user-2", DogCreateInput{Name: "Odin"})

	if err := svc.SelectDog(ctx, "user-1", first.ID); err != nil {
		t.Fatalf("SelectDog: %v", err)
	}
	// Unknown and foreign IDs are silently ignored.
	if err := svc.SelectDog(ctx, "user-1", "missing-id"); err != nil {
		t.Fatalf("SelectDog(unknown): %v", err)
	}
	if err := svc.SelectDog(ctx, "user-1", foreign.ID); err != nil {
		t.Fatalf("SelectDog(foreign): %v", err)
	}

	selected, err := svc.SelectedDog(ctx, "user-1")
	if err != nil {
		t.Fatalf("SelectedDog: %v", err)
	}
	if selected.ID != first.ID {
		t.Errorf("selection moved to %s, want it kept at %s", selected.ID, first.ID)
	}
	_ = second
}

func TestUpdateDogMergesAndIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()

	dog, _ := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Bella", Breed: "Labrador", WeightKG: 24})

	weight := 26.5
	updated, err := svc.UpdateDog(ctx, "user-1", dog.ID, domain.DogUpdate{WeightKG: &weight})
	if err != nil {
		t.Fatalf("UpdateDog: %v", err)
	}
	if updated.WeightKG != 26.5 || updated.Breed != "Labrador" {
		t.Errorf("merge result = %+v, want only weight changed", updated)
	}

	missing, err := svc.UpdateDog(ctx, "user-1", "missing-id", domain.DogUpdate{WeightKG: &weight})
	if err != nil || missing != nil {
		t.Fatalf("unknown id should be a no-op, got (%v, %v)", missing, err)
	}

	foreign, err := svc.UpdateDog(ctx, "user-2", dog.ID, domain.DogUpdate{WeightKG: &weight})
	if err != nil || foreign != nil {
		t.Fatalf("foreign dog should be a no-op, got (%v, %v)", foreign, err)
	}
}

func TestRemoveDogReselectsFirstRemaining(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()

	first, _ := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Bella"})
	second, _ := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Rex"})

	// Adding the second dog selected it; removing it must fall back to
	// the first remaining roster entry.
	if err := svc.RemoveDog(ctx, "user-1", second.ID); err != nil {
		t.Fatalf("RemoveDog: %v", err)
	}
	selected, err := svc.SelectedDog(ctx, "user-1")
	if err != nil {
		t.Fatalf("SelectedDog: %v", err)
	}
	if selected.ID != first.ID {
		t.Errorf("selected = %s, want first remaining dog %s", selected.ID, first.ID)
	}

	if err := svc.RemoveDog(ctx, "user-1", first.ID); err != nil {
		t.Fatalf("RemoveDog(last): %v", err)
	}
	if _, err := svc.SelectedDog(ctx, "user-1"); err == nil {
		t.Fatal("empty roster should have no selected dog")
	}
}

func TestRemoveDogErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()
	dog, _ := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Bella"})

	if err := svc.RemoveDog(ctx, "user-1", "missing-id"); apperrors.ToDomainError(err).Code != "NOT_FOUND" {
		t.Fatalf("unknown id err = %v, want NOT_FOUND", err)
	}
	if err := svc.RemoveDog(ctx, "user-2", dog.ID); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("foreign dog err = %v, want FORBIDDEN", err)
	}
}

func TestSubmitReevaluationAppendsVersions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()

	dog, _ := svc.AddDog(ctx, "user-1", DogCreateInput{Name: "Bella", WeightKG: 24})

	submission, err := svc.SubmitReevaluation(ctx, "user-1", domain.ReevaluationInput{
		Symptoms:     []string{domain.SymptomVomiting},
		WeightKG:     23.2,
		DietResponse: "not working",
	})
	if err != nil {
		t.Fatalf("SubmitReevaluation: %v", err)
	}
	if submission.Diagnosis.Urgency != domain.UrgencyHigh {
		t.Errorf("urgency = %q, want high for vomiting", submission.Diagnosis.Urgency)
	}

	history, err := svc.GetProtocolHistory(ctx, "user-1", dog.ID)
	if err != nil {
		t.Fatalf("GetProtocolHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	// Newest version first, each linked to its predecessor.
	if history[0].Version != 2 || history[1].Version != 1 {
		t.Fatalf("history order = [%d %d], want [2 1]", history[0].Version, history[1].Version)
	}
	if history[0].ReplacesProtocolID == nil || *history[0].ReplacesProtocolID != history[1].ID {
		t.Errorf("version 2 should replace version 1")
	}

	updatedDog, err := svc.SelectedDog(ctx, "user-1")
	if err != nil {
		t.Fatalf("SelectedDog: %v", err)
	}
	if updatedDog.WeightKG != 23.2 {
		t.Errorf("dog weight = %v, want updated from input", updatedDog.WeightKG)
	}
	if updatedDog.LastProtocolID == nil || *updatedDog.LastProtocolID != history[0].ID {
		t.Errorf("last protocol pointer should follow the new version")
	}

	second, err := svc.SubmitReevaluation(ctx, "user-1", domain.ReevaluationInput{WeightKG: 23})
	if err != nil {
		t.Fatalf("second SubmitReevaluation: %v", err)
	}
	last, err := svc.GetLastDiagnosisSubmission(ctx, "user-1", dog.ID)
	if err != nil || last == nil || last.ID != second.ID {
		t.Fatalf("last submission = %+v (%v), want %s", last, err, second.ID)
	}
}

func TestSubmitReevaluationWithoutDogs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPetServiceForTest()
	if _, err := svc.SubmitReevaluation(ctx, "user-1", domain.ReevaluationInput{}); err == nil {
		t.Fatal("re-evaluation with an empty roster should fail")
	}
}
