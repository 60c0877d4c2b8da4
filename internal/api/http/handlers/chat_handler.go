package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/canine-care-service/internal/api/dto"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/service"
)

// ChatHandler exposes conversation endpoints for users and staff.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chatService}
}

// StartConversation handles POST /conversations.
func (h *ChatHandler) StartConversation(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StartConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	conversation, err := h.chat.StartConversation(c.Context(), user.ID, req.DogID, req.Subject)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": conversationResponse(service.ConversationView{Conversation: *conversation})})
}

// ListConversations handles GET /conversations.
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.chat.ListConversations(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": conversationResponses(views)})
}

// GetConversation handles GET /conversations/:id. Fetching the thread marks
// the other side's messages as read.
func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	conversation, messages, err := h.chat.GetConversation(c.Context(), domain.SubjectTypeUser, user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"conversation": conversationResponse(service.ConversationView{Conversation: *conversation}),
		"messages":     messageResponses(messages),
	}})
}

// SendMessage handles POST /conversations/:id/messages.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	message, err := h.chat.SendMessage(c.Context(), domain.SubjectTypeUser, user.ID, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(message)})
}

// StaffListConversations handles GET /admin/conversations.
func (h *ChatHandler) StaffListConversations(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pageOffsetLimit(c, 50)
	views, err := h.chat.ListAllConversations(c.Context(), staff, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": conversationResponses(views)})
}

// StaffGetConversation handles GET /admin/conversations/:id.
func (h *ChatHandler) StaffGetConversation(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	conversation, messages, err := h.chat.GetConversation(c.Context(), domain.SubjectTypeStaff, staff.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"conversation": conversationResponse(service.ConversationView{Conversation: *conversation}),
		"messages":     messageResponses(messages),
	}})
}

// StaffSendMessage handles POST /admin/conversations/:id/messages.
func (h *ChatHandler) StaffSendMessage(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	message, err := h.chat.SendMessage(c.Context(), domain.SubjectTypeStaff, staff.ID, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(message)})
}

func conversationResponses(views []service.ConversationView) []dto.ConversationResponse {
	items := make([]dto.ConversationResponse, 0, len(views))
	for _, view := range views {
		items = append(items, conversationResponse(view))
	}
	return items
}

func conversationResponse(view service.ConversationView) dto.ConversationResponse {
	resp := dto.ConversationResponse{
		ID:          view.Conversation.ID,
		UserID:      view.Conversation.UserID,
		DogID:       view.Conversation.DogID,
		Subject:     view.Conversation.Subject,
		UnreadCount: view.UnreadCount,
		CreatedAt:   view.Conversation.CreatedAt,
		UpdatedAt:   view.Conversation.UpdatedAt,
	}
	if view.LastMessage != nil {
		last := messageResponse(view.LastMessage)
		resp.LastMessage = &last
	}
	return resp
}

func messageResponses(messages []domain.Message) []dto.MessageResponse {
	items := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, messageResponse(&messages[i]))
	}
	return items
}

func messageResponse(message *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderRole:     message.SenderRole,
		SenderID:       message.SenderID,
		Body:           message.Body,
		Read:           message.Read,
		CreatedAt:      message.CreatedAt,
	}
}
