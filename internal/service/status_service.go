package service

import (
	"context"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/mansoorceksport/filevault/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Status reports backing-store liveness.
type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// Stats reports collection counts.
type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// StatusService answers the /status and /stats endpoints.
type StatusService struct {
	mongo    *storage.MongoClient
	redis    *redis.Client
	userRepo domain.UserRepository
	fileRepo domain.FileRepository
}

// NewStatusService creates a new status service
func NewStatusService(mongo *storage.MongoClient, redisClient *redis.Client, userRepo domain.UserRepository, fileRepo domain.FileRepository) *StatusService {
	return &StatusService{
		mongo:    mongo,
		redis:    redisClient,
		userRepo: userRepo,
		fileRepo: fileRepo,
	}
}

func (s *StatusService) Status(ctx context.Context) Status {
	return Status{
		Redis: s.redis.Ping(ctx).Err() == nil,
		DB:    s.mongo.IsAlive(ctx),
	}
}

func (s *StatusService) Stats(ctx context.Context) (Stats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	files, err := s.fileRepo.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Users: users, Files: files}, nil
}
