package store

import (
	"context"

	"schichtbuch-backend/internal/model"
)

func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("name").Find(&machines).Error; err != nil {
		return nil, err
	}
	return machines, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, machine *model.Machine) error {
	return s.db.WithContext(ctx).Create(machine).Error
}
