package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/cache"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/generator"
	"github.com/spec-kit/canine-care-service/internal/repository"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

// PetService coordinates the dog roster and protocol workflows.
type PetService struct {
	dogs        repository.DogRepository
	protocols   repository.ProtocolRepository
	submissions repository.SubmissionRepository
	snapshots   *cache.SnapshotCache
	dispatcher  events.Dispatcher
}

// PetDependencies bundles repositories for the pet service.
type PetDependencies struct {
	DogRepo        repository.DogRepository
	ProtocolRepo   repository.ProtocolRepository
	SubmissionRepo repository.SubmissionRepository
	Snapshots      *cache.SnapshotCache
	Dispatcher     events.Dispatcher
}

// DogCreateInput describes the intake payload for a new dog.
type DogCreateInput struct {
	Name             string
	Breed            string
	Sex              string
	DateOfBirth      *time.Time
	WeightKG         float64
	DietNotes        string
	EnvironmentNotes string
	BehaviorNotes    string
	Symptoms         []string
}

// NewPetService constructs the service.
func NewPetService(deps PetDependencies) *PetService {
	return &PetService{
		dogs:        deps.DogRepo,
		protocols:   deps.ProtocolRepo,
		submissions: deps.SubmissionRepo,
		snapshots:   deps.Snapshots,
		dispatcher:  deps.Dispatcher,
	}
}

// AddDog registers a new dog, generates its first protocol and intake
// submission, and selects it as the user's current dog.
func (s *PetService) AddDog(ctx context.Context, userID string, input DogCreateInput) (*domain.Dog, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("dog name is required", nil)
	}

	existing, err := s.dogs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if strings.EqualFold(other.Name, name) {
			return nil, apperrors.NewConflict("a dog with this name already exists", map[string]any{"name": name})
		}
	}

	dog := &domain.Dog{
		OwnerID:          userID,
		Name:             name,
		Breed:            strings.TrimSpace(input.Breed),
		Sex:              input.Sex,
		DateOfBirth:      input.DateOfBirth,
		WeightKG:         input.WeightKG,
		DietNotes:        input.DietNotes,
		EnvironmentNotes: input.EnvironmentNotes,
		BehaviorNotes:    input.BehaviorNotes,
		Symptoms:         input.Symptoms,
		Active:           true,
	}
	if err := s.dogs.Create(ctx, dog); err != nil {
		return nil, err
	}

	meals, supplements, tips := generator.DefaultProtocolContent()
	protocol := &domain.Protocol{
		DogID:         dog.ID,
		Version:       1,
		Meals:         meals,
		Supplements:   supplements,
		LifestyleTips: tips,
	}
	if err := s.protocols.Create(ctx, protocol); err != nil {
		return nil, err
	}

	intake := domain.ReevaluationInput{
		Symptoms:     input.Symptoms,
		WeightKG:     input.WeightKG,
		DietResponse: input.DietNotes,
		VetFeedback:  "",
	}
	derived := generator.Derive(*protocol, intake)
	submission, err := s.appendSubmission(ctx, dog, protocol.ID, intake, derived)
	if err != nil {
		return nil, err
	}

	dog.LastProtocolID = &protocol.ID
	dog.LastSubmissionID = &submission.ID
	if err := s.dogs.Update(ctx, dog); err != nil {
		return nil, err
	}

	s.refreshRoster(ctx, userID)
	_ = s.snapshots.PutSelectedDog(ctx, userID, dog.ID)

	s.publishEvent(ctx, events.Event{
		Type:      events.EventSubmissionCreated,
		SubjectID: submission.ID,
		Actor:     userActor(userID),
		Payload: events.SubmissionCreatedPayload{
			DogID:    dog.ID,
			DogName:  dog.Name,
			Urgency:  submission.Diagnosis.Urgency,
			Priority: submission.Priority,
		},
	})
	return dog, nil
}

// ListDogs returns the user's roster, serving from the snapshot cache when
// possible.
func (s *PetService) ListDogs(ctx context.Context, userID string) ([]domain.Dog, error) {
	if dogs, err := s.snapshots.GetDogs(ctx, userID); err == nil {
		return dogs, nil
	}
	dogs, err := s.dogs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.snapshots.PutDogs(ctx, userID, dogs)
	return dogs, nil
}

// SelectDog moves the user's current-dog pointer. Selecting a dog outside
// the roster is a no-op.
func (s *PetService) SelectDog(ctx context.Context, userID, dogID string) error {
	dog, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if dog.OwnerID != userID {
		return nil
	}
	return s.snapshots.PutSelectedDog(ctx, userID, dogID)
}

// SelectedDog resolves the user's current dog, falling back to the first
// roster entry when no explicit selection exists.
func (s *PetService) SelectedDog(ctx context.Context, userID string) (*domain.Dog, error) {
	if dogID, err := s.snapshots.GetSelectedDog(ctx, userID); err == nil && dogID != "" {
		dog, err := s.dogs.GetByID(ctx, dogID)
		if err == nil && dog.OwnerID == userID {
			return dog, nil
		}
	}
	dogs, err := s.dogs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(dogs) == 0 {
		return nil, apperrors.NewNotFound("dog", nil)
	}
	first := dogs[0]
	_ = s.snapshots.PutSelectedDog(ctx, userID, first.ID)
	return &first, nil
}

// UpdateDog merges partial fields into a dog. Unknown IDs are a no-op.
func (s *PetService) UpdateDog(ctx context.Context, userID, dogID string, update domain.DogUpdate) (*domain.Dog, error) {
	dog, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if dog.OwnerID != userID {
		return nil, nil
	}
	update.Apply(dog)
	if err := s.dogs.Update(ctx, dog); err != nil {
		return nil, err
	}
	s.refreshRoster(ctx, userID)
	return dog, nil
}

// RemoveDog deletes a dog. If it was selected, the first remaining dog is
// selected, or the selection is cleared.
func (s *PetService) RemoveDog(ctx context.Context, userID, dogID string) error {
	dog, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("dog", map[string]any{"dog_id": dogID})
		}
		return err
	}
	if dog.OwnerID != userID {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.dogs.Delete(ctx, dogID); err != nil {
		return err
	}

	selected, selErr := s.snapshots.GetSelectedDog(ctx, userID)
	remaining, err := s.dogs.ListByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if selErr == nil && selected == dogID {
		if len(remaining) > 0 {
			_ = s.snapshots.PutSelectedDog(ctx, userID, remaining[0].ID)
		} else {
			_ = s.snapshots.ClearSelectedDog(ctx, userID)
		}
	}
	_ = s.snapshots.PutDogs(ctx, userID, remaining)
	return nil
}

// SubmitReevaluation derives a new protocol version and diagnosis submission
// for the user's selected dog and returns the new submission.
func (s *PetService) SubmitReevaluation(ctx context.Context, userID string, input domain.ReevaluationInput) (*domain.DiagnosisSubmission, error) {
	dog, err := s.SelectedDog(ctx, userID)
	if err != nil {
		return nil, err
	}

	prior, err := s.currentProtocol(ctx, dog)
	if err != nil {
		return nil, err
	}

	derived := generator.Derive(*prior, input)
	protocol := &domain.Protocol{
		DogID:              dog.ID,
		Version:            prior.Version + 1,
		ReplacesProtocolID: &prior.ID,
		Meals:              derived.Meals,
		Supplements:        derived.Supplements,
		LifestyleTips:      derived.LifestyleTips,
	}
	if err := s.protocols.Create(ctx, protocol); err != nil {
		return nil, err
	}

	if input.WeightKG > 0 {
		dog.WeightKG = input.WeightKG
	}
	if input.Symptoms != nil {
		dog.Symptoms = input.Symptoms
	}

	submission, err := s.appendSubmission(ctx, dog, protocol.ID, input, derived)
	if err != nil {
		return nil, err
	}

	dog.LastProtocolID = &protocol.ID
	dog.LastSubmissionID = &submission.ID
	if err := s.dogs.Update(ctx, dog); err != nil {
		return nil, err
	}
	s.refreshRoster(ctx, userID)

	s.publishEvent(ctx, events.Event{
		Type:      events.EventSubmissionCreated,
		SubjectID: submission.ID,
		Actor:     userActor(userID),
		Payload: events.SubmissionCreatedPayload{
			DogID:    dog.ID,
			DogName:  dog.Name,
			Urgency:  submission.Diagnosis.Urgency,
			Priority: submission.Priority,
		},
	})
	return submission, nil
}

// GetProtocolHistory returns all protocols for a dog, newest version first.
func (s *PetService) GetProtocolHistory(ctx context.Context, userID, dogID string) ([]domain.Protocol, error) {
	dog, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("dog", map[string]any{"dog_id": dogID})
		}
		return nil, err
	}
	if dog.OwnerID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.protocols.ListByDog(ctx, dogID)
}

// GetLastDiagnosisSubmission returns the submission referenced by the dog's
// back-pointer, or nil when none exists.
func (s *PetService) GetLastDiagnosisSubmission(ctx context.Context, userID, dogID string) (*domain.DiagnosisSubmission, error) {
	dog, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("dog", map[string]any{"dog_id": dogID})
		}
		return nil, err
	}
	if dog.OwnerID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if dog.LastSubmissionID == nil {
		return nil, nil
	}
	submission, err := s.submissions.GetByID(ctx, *dog.LastSubmissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return submission, nil
}

func (s *PetService) currentProtocol(ctx context.Context, dog *domain.Dog) (*domain.Protocol, error) {
	if dog.LastProtocolID != nil {
		protocol, err := s.protocols.GetByID(ctx, *dog.LastProtocolID)
		if err == nil {
			return protocol, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	history, err := s.protocols.ListByDog(ctx, dog.ID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, apperrors.NewNotFound("protocol", map[string]any{"dog_id": dog.ID})
	}
	head := history[0]
	return &head, nil
}

func (s *PetService) appendSubmission(ctx context.Context, dog *domain.Dog, protocolID string, input domain.ReevaluationInput, derived generator.Output) (*domain.DiagnosisSubmission, error) {
	submission := &domain.DiagnosisSubmission{
		DogID:  dog.ID,
		UserID: dog.OwnerID,
		Snapshot: domain.DogSnapshot{
			Name:     dog.Name,
			Breed:    dog.Breed,
			WeightKG: dog.WeightKG,
			Symptoms: dog.Symptoms,
		},
		Input:      input,
		Diagnosis:  derived.Diagnosis,
		Priority:   derived.Priority,
		ProtocolID: protocolID,
		Status:     domain.SubmissionPending,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *PetService) refreshRoster(ctx context.Context, userID string) {
	dogs, err := s.dogs.ListByOwner(ctx, userID)
	if err != nil {
		_ = s.snapshots.InvalidateDogs(ctx, userID)
		return
	}
	_ = s.snapshots.PutDogs(ctx, userID, dogs)
}

func (s *PetService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}
