package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"jobboard_chat/internal/domain"
	"jobboard_chat/pkg/logger"
)

type StatsRepository interface {
	GetEmployerStats(ctx context.Context, employerIDs []string) (*domain.EmployerChatStats, error)
}

type statsRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log logger.Logger) StatsRepository {
	return &statsRepository{db: db, log: log}
}

func (r *statsRepository) GetEmployerStats(ctx context.Context, employerIDs []string) (*domain.EmployerChatStats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE unread_for_employer)
		FROM chat_summaries
		WHERE employer_id = ANY($1)
	`

	stats := &domain.EmployerChatStats{}
	if len(employerIDs) > 0 {
		stats.EmployerID = employerIDs[0]
	}

	err := r.db.QueryRow(ctx, query, employerIDs).Scan(&stats.Conversations, &stats.UnreadConversations)
	if err != nil {
		r.log.Error("Failed to get employer chat stats", "employer_ids", employerIDs, "error", err)
		return nil, err
	}

	return stats, nil
}
