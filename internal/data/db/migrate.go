package db

import (
	"fmt"

	types "github.com/yungbote/workpulse-backend/internal/domain"
)

func (s *Service) AutoMigrateAll() error {
	models := types.Models()
	if err := s.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	s.log.Info("Schema migrated", "models", len(models))
	return nil
}
