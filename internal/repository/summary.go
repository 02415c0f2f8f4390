package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"jobboard_chat/internal/domain"
	"jobboard_chat/pkg/logger"
)

type SummaryRepository interface {
	// Get возвращает nil, nil если сводки еще нет
	Get(ctx context.Context, key domain.ConversationKey) (*domain.ConversationSummary, error)
	// Merge пишет только поля патча, создавая строку при первой записи
	Merge(ctx context.Context, key domain.ConversationKey, patch domain.SummaryPatch) (*domain.ConversationSummary, error)
	// ListByEmployer ищет по всем представлениям employer id
	ListByEmployer(ctx context.Context, employerIDs []string) ([]*domain.ConversationSummary, error)
}

type summaryRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewSummaryRepository(db *pgxpool.Pool, log logger.Logger) SummaryRepository {
	return &summaryRepository{db: db, log: log}
}

const summaryColumns = `employer_id, applicant_id, applicant_name, last_message, last_timestamp,
		unread_for_employer, unread_for_applicant, updated_at`

func (r *summaryRepository) Get(ctx context.Context, key domain.ConversationKey) (*domain.ConversationSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM chat_summaries
		WHERE employer_id = $1 AND applicant_id = $2
	`

	summary, err := scanSummary(r.db.QueryRow(ctx, query, key.EmployerID, key.ApplicantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to get conversation summary", "conversation_key", key.String(), "error", err)
		return nil, err
	}

	return summary, nil
}

func (r *summaryRepository) Merge(ctx context.Context, key domain.ConversationKey, patch domain.SummaryPatch) (*domain.ConversationSummary, error) {
	summary, err := mergeSummary(ctx, r.db, key, patch)
	if err != nil {
		r.log.Error("Failed to merge conversation summary", "conversation_key", key.String(), "error", err)
		return nil, err
	}
	return summary, nil
}

func (r *summaryRepository) ListByEmployer(ctx context.Context, employerIDs []string) ([]*domain.ConversationSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM chat_summaries
		WHERE employer_id = ANY($1)
		ORDER BY unread_for_employer DESC, last_timestamp DESC NULLS LAST
	`

	rows, err := r.db.Query(ctx, query, employerIDs)
	if err != nil {
		r.log.Error("Failed to list conversation summaries", "employer_ids", employerIDs, "error", err)
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*domain.ConversationSummary, 0)
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			r.log.Error("Failed to scan conversation summary", "error", err)
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to iterate conversation summaries", "error", err)
		return nil, err
	}

	return summaries, nil
}

func mergeSummary(ctx context.Context, q querier, key domain.ConversationKey, patch domain.SummaryPatch) (*domain.ConversationSummary, error) {
	query, args := buildMergeQuery(key, patch)
	summary, err := scanSummary(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to merge summary: %w", err)
	}
	return summary, nil
}

// buildMergeQuery строит upsert, который трогает только колонки из патча.
// employer_id/applicant_id всегда берутся из ключа.
func buildMergeQuery(key domain.ConversationKey, patch domain.SummaryPatch) (string, []interface{}) {
	columns := []string{"employer_id", "applicant_id"}
	args := []interface{}{key.EmployerID, key.ApplicantID}

	add := func(column string, value interface{}) {
		columns = append(columns, column)
		args = append(args, value)
	}
	if patch.ApplicantName != nil {
		add("applicant_name", *patch.ApplicantName)
	}
	if patch.LastMessage != nil {
		add("last_message", *patch.LastMessage)
	}
	if patch.LastTimestamp != nil {
		add("last_timestamp", *patch.LastTimestamp)
	}
	if patch.UnreadForEmployer != nil {
		add("unread_for_employer", *patch.UnreadForEmployer)
	}
	if patch.UnreadForApplicant != nil {
		add("unread_for_applicant", *patch.UnreadForApplicant)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	updates := []string{"updated_at = now()"}
	for _, column := range columns[2:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	query := fmt.Sprintf(`
		INSERT INTO chat_summaries (%s, updated_at)
		VALUES (%s, now())
		ON CONFLICT (employer_id, applicant_id) DO UPDATE
		SET %s
		RETURNING %s
	`, strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "), summaryColumns)

	return query, args
}

func scanSummary(row pgx.Row) (*domain.ConversationSummary, error) {
	summary := &domain.ConversationSummary{}
	err := row.Scan(
		&summary.EmployerID, &summary.ApplicantID, &summary.ApplicantName, &summary.LastMessage,
		&summary.LastTimestamp, &summary.UnreadForEmployer, &summary.UnreadForApplicant, &summary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	summary.Key = domain.JoinKey(summary.EmployerID, summary.ApplicantID)
	return summary, nil
}
