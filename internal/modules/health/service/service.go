package service

import (
	"context"

	"anoa.com/droneanalytics/internal/modules/user/repository"
)

type HealthService interface {
	// CountUsers doubles as the database connectivity probe.
	CountUsers(ctx context.Context) (int64, error)
}

type healthService struct {
	userRepo repository.UserRepository
}

func NewHealthService(userRepo repository.UserRepository) HealthService {
	return &healthService{
		userRepo: userRepo,
	}
}

func (s *healthService) CountUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}
