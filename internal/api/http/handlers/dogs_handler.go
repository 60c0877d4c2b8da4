package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/canine-care-service/internal/api/dto"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/service"
)

// DogsHandler exposes the pet roster and re-evaluation endpoints.
type DogsHandler struct {
	pets *service.PetService
}

// NewDogsHandler constructs handler.
func NewDogsHandler(petService *service.PetService) *DogsHandler {
	return &DogsHandler{pets: petService}
}

// CreateDog handles POST /dogs. The new dog becomes the selected one and
// receives its first protocol and intake submission.
func (h *DogsHandler) CreateDog(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.DogCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}

	dog, err := h.pets.AddDog(c.Context(), user.ID, service.DogCreateInput{
		Name:             req.Name,
		Breed:            req.Breed,
		Sex:              req.Sex,
		DateOfBirth:      req.DateOfBirth,
		WeightKG:         req.WeightKG,
		DietNotes:        req.DietNotes,
		EnvironmentNotes: req.EnvironmentNotes,
		BehaviorNotes:    req.BehaviorNotes,
		Symptoms:         req.Symptoms,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dogResponse(dog)})
}

// ListDogs handles GET /dogs.
func (h *DogsHandler) ListDogs(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	dogs, err := h.pets.ListDogs(c.Context(), user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.DogResponse, 0, len(dogs))
	for i := range dogs {
		items = append(items, dogResponse(&dogs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SelectedDog handles GET /dogs/selected.
func (h *DogsHandler) SelectedDog(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	dog, err := h.pets.SelectedDog(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dogResponse(dog)})
}

// SelectDog handles PUT /dogs/:id/select.
func (h *DogsHandler) SelectDog(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.pets.SelectDog(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "selected"}})
}

// UpdateDog handles PATCH /dogs/:id.
func (h *DogsHandler) UpdateDog(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.DogUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	dog, err := h.pets.UpdateDog(c.Context(), user.ID, c.Params("id"), domain.DogUpdate{
		Name:             req.Name,
		Breed:            req.Breed,
		Sex:              req.Sex,
		DateOfBirth:      req.DateOfBirth,
		WeightKG:         req.WeightKG,
		DietNotes:        req.DietNotes,
		EnvironmentNotes: req.EnvironmentNotes,
		BehaviorNotes:    req.BehaviorNotes,
		Symptoms:         req.Symptoms,
	})
	if err != nil {
		return err
	}
	if dog == nil {
		// Unknown id is a silent no-op for updates.
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dogResponse(dog)})
}

// DeleteDog handles DELETE /dogs/:id.
func (h *DogsHandler) DeleteDog(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.pets.RemoveDog(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "removed"}})
}

// SubmitReevaluation handles POST /dogs/reevaluation for the selected dog.
func (h *DogsHandler) SubmitReevaluation(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ReevaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	submission, err := h.pets.SubmitReevaluation(c.Context(), user.ID, domain.ReevaluationInput{
		Symptoms:     req.Symptoms,
		WeightKG:     req.WeightKG,
		DietResponse: req.DietResponse,
		VetFeedback:  req.VetFeedback,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": submissionResponse(submission)})
}

// ProtocolHistory handles GET /dogs/:id/protocols, newest version first.
func (h *DogsHandler) ProtocolHistory(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	protocols, err := h.pets.GetProtocolHistory(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ProtocolResponse, 0, len(protocols))
	for i := range protocols {
		items = append(items, protocolResponse(&protocols[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// LastSubmission handles GET /dogs/:id/last-submission.
func (h *DogsHandler) LastSubmission(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	submission, err := h.pets.GetLastDiagnosisSubmission(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	if submission == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": submissionResponse(submission)})
}

func dogResponse(dog *domain.Dog) dto.DogResponse {
	return dto.DogResponse{
		ID:               dog.ID,
		Name:             dog.Name,
		Breed:            dog.Breed,
		Sex:              dog.Sex,
		DateOfBirth:      dog.DateOfBirth,
		WeightKG:         dog.WeightKG,
		DietNotes:        dog.DietNotes,
		EnvironmentNotes: dog.EnvironmentNotes,
		BehaviorNotes:    dog.BehaviorNotes,
		Symptoms:         dog.Symptoms,
		LastProtocolID:   dog.LastProtocolID,
		LastSubmissionID: dog.LastSubmissionID,
		CreatedAt:        dog.CreatedAt,
		UpdatedAt:        dog.UpdatedAt,
	}
}

func protocolResponse(protocol *domain.Protocol) dto.ProtocolResponse {
	return dto.ProtocolResponse{
		ID:                 protocol.ID,
		DogID:              protocol.DogID,
		Version:            protocol.Version,
		ReplacesProtocolID: protocol.ReplacesProtocolID,
		Meals:              protocol.Meals,
		Supplements:        protocol.Supplements,
		LifestyleTips:      protocol.LifestyleTips,
		CreatedAt:          protocol.CreatedAt,
	}
}

func submissionResponse(submission *domain.DiagnosisSubmission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:              submission.ID,
		DogID:           submission.DogID,
		UserID:          submission.UserID,
		Snapshot:        submission.Snapshot,
		Input:           submission.Input,
		Diagnosis:       submission.Diagnosis,
		Priority:        submission.Priority,
		ProtocolID:      submission.ProtocolID,
		FinalProtocolID: submission.FinalProtocolID,
		Status:          submission.Status,
		AssigneeID:      submission.AssigneeID,
		CreatedAt:       submission.CreatedAt,
		UpdatedAt:       submission.UpdatedAt,
	}
}
