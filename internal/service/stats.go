package service

import (
	"context"

	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/repository"
	"jobboard_chat/pkg/logger"
)

type StatsService interface {
	GetEmployerStats(ctx context.Context, employerID string) (*domain.EmployerChatStats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	log       logger.Logger
}

func NewStatsService(statsRepo repository.StatsRepository, log logger.Logger) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		log:       log,
	}
}

func (s *statsService) GetEmployerStats(ctx context.Context, employerID string) (*domain.EmployerChatStats, error) {
	stats, err := s.statsRepo.GetEmployerStats(ctx, domain.EmployerIDVariants(employerID))
	if err != nil {
		return nil, err
	}
	stats.EmployerID = employerID
	return stats, nil
}
