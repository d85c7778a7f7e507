package handlers

import (
	"campusboard/internal/config"
	"campusboard/internal/enrichment"
	"campusboard/internal/storage/postgres"
	"campusboard/internal/storage/redis"

	"go.uber.org/zap"
)

// Context contains deps for all handlers
type Context struct {
	Store    *postgres.Store
	Cache    *redis.Cache
	Resolver *enrichment.Resolver
	Config   *config.Config
	Logger   *zap.Logger
}
