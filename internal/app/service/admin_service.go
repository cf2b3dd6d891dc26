package service

import (
	"context"

	"tangle_backend/internal/domain/model"
	"tangle_backend/internal/domain/repository"
)

type AdminService struct {
	userRepo    repository.UserRepository
	uploadRepo  repository.UploadRepository
	attemptRepo repository.AttemptRepository
}

func NewAdminService(userRepo repository.UserRepository, uploadRepo repository.UploadRepository, attemptRepo repository.AttemptRepository) *AdminService {
	return &AdminService{userRepo: userRepo, uploadRepo: uploadRepo, attemptRepo: attemptRepo}
}

func (s *AdminService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	uploads, err := s.uploadRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.uploadRepo.PagesByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return &model.DashboardStats{
		TotalUsers:       users,
		TotalUploads:     uploads,
		TotalAttempts:    attempts,
		LevelsByCategory: byCategory,
	}, nil
}
