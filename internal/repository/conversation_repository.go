package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// ConversationRepository stores conversation threads.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error
	Touch(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Conversation, error)
}

// MessageRepository stores conversation messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, conversationID string, viewer domain.SubjectType) error
}

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository instantiates the repository.
func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

func (r *conversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	const query = `
        INSERT INTO conversations (user_id, dog_id, subject)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		conversation.UserID,
		conversation.DogID,
		conversation.Subject,
	).Scan(&conversation.ID, &conversation.CreatedAt, &conversation.UpdatedAt)
}

func (r *conversationRepository) Touch(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE conversations SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	const query = `
        SELECT id, user_id, dog_id, subject, created_at, updated_at
        FROM conversations WHERE id=$1`
	var conversation domain.Conversation
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&conversation.ID,
		&conversation.UserID,
		&conversation.DogID,
		&conversation.Subject,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	const query = `
        SELECT id, user_id, dog_id, subject, created_at, updated_at
        FROM conversations WHERE user_id=$1 ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConversations(rows)
}

func (r *conversationRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, dog_id, subject, created_at, updated_at
        FROM conversations ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConversations(rows)
}

func scanConversations(rows pgx.Rows) ([]domain.Conversation, error) {
	var result []domain.Conversation
	for rows.Next() {
		var conversation domain.Conversation
		if err := rows.Scan(
			&conversation.ID,
			&conversation.UserID,
			&conversation.DogID,
			&conversation.Subject,
			&conversation.CreatedAt,
			&conversation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, conversation)
	}
	return result, rows.Err()
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository instantiates the repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	const query = `
        INSERT INTO messages (conversation_id, sender_role, sender_id, body, read_flag)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		message.ConversationID,
		message.SenderRole,
		message.SenderID,
		message.Body,
		message.Read,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	const query = `
        SELECT id, conversation_id, sender_role, sender_id, body, read_flag, created_at
        FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&message.SenderRole,
			&message.SenderID,
			&message.Body,
			&message.Read,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}

// MarkRead marks messages authored by the other side as read.
func (r *messageRepository) MarkRead(ctx context.Context, conversationID string, viewer domain.SubjectType) error {
	const query = `
        UPDATE messages SET read_flag=TRUE
        WHERE conversation_id=$1 AND sender_role<>$2 AND read_flag=FALSE`
	_, err := r.pool.Exec(ctx, query, conversationID, viewer)
	return err
}
