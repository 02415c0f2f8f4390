package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"jobboard_chat/pkg/logger"
)

var migrations = []string{
	// Лог сообщений: порядок = порядок прихода в базу
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		employer_id TEXT NOT NULL,
		applicant_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		body TEXT NOT NULL CHECK (length(btrim(body)) > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation
	ON chat_messages(employer_id, applicant_id, created_at, id)`,

	// Сводка беседы, одна строка на пару employer/applicant
	`CREATE TABLE IF NOT EXISTS chat_summaries (
		employer_id TEXT NOT NULL,
		applicant_id TEXT NOT NULL,
		applicant_name TEXT,
		last_message TEXT,
		last_timestamp TIMESTAMPTZ,
		unread_for_employer BOOLEAN NOT NULL DEFAULT FALSE,
		unread_for_applicant BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (employer_id, applicant_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_chat_summaries_employer_unread
	ON chat_summaries(employer_id, unread_for_employer)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		event_time TIMESTAMPTZ NOT NULL,
		actor_id TEXT NOT NULL,
		actor_role TEXT NOT NULL,
		conversation_key TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_log_conversation
	ON audit_log(conversation_key, event_time)`,
}

// Migrate применяет схему. Все выражения идемпотентны.
func Migrate(ctx context.Context, db *pgxpool.Pool, log logger.Logger) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			log.Error("Migration failed", "step", i, "error", err)
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	log.Info("Database schema is up to date", "steps", len(migrations))
	return nil
}
