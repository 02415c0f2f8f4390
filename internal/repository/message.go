package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"jobboard_chat/internal/domain"
	"jobboard_chat/pkg/logger"
)

type MessageRepository interface {
	// Append добавляет сообщение и в той же транзакции мержит сводку.
	// LastTimestamp патча выставляется в серверное время сообщения.
	Append(ctx context.Context, message *domain.Message, patch domain.SummaryPatch) (*domain.ConversationSummary, error)
	List(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Append(ctx context.Context, message *domain.Message, patch domain.SummaryPatch) (*domain.ConversationSummary, error) {
	var summary *domain.ConversationSummary

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO chat_messages (employer_id, applicant_id, sender_id, body)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		err := tx.QueryRow(ctx, query,
			message.EmployerID, message.ApplicantID, message.SenderID, message.Text,
		).Scan(&message.ID, &message.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}

		createdAt := message.CreatedAt
		patch.LastTimestamp = &createdAt

		summary, err = mergeSummary(ctx, tx, message.ConversationKey(), patch)
		return err
	})
	if err != nil {
		r.log.Error("Failed to append message", "conversation_key", message.ConversationKey().String(), "error", err)
		return nil, err
	}

	return summary, nil
}

func (r *messageRepository) List(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error) {
	query := `
		SELECT id, employer_id, applicant_id, sender_id, body, created_at
		FROM chat_messages
		WHERE employer_id = $1 AND applicant_id = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, key.EmployerID, key.ApplicantID)
	if err != nil {
		r.log.Error("Failed to list messages", "conversation_key", key.String(), "error", err)
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		message := &domain.Message{}
		err := rows.Scan(
			&message.ID, &message.EmployerID, &message.ApplicantID,
			&message.SenderID, &message.Text, &message.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to iterate messages", "error", err)
		return nil, err
	}

	return messages, nil
}
