package kv

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps slots as rows of the kv_slots table.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Load(ctx context.Context, slot string) ([]byte, error) {
	var row model.Slot
	err := s.db.WithContext(ctx).Where("name = ?", slot).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		logger.Error("Failed to load slot from database", err, map[string]interface{}{
			"slot": slot,
		})
		return nil, err
	}
	return row.Data, nil
}

func (s *SQLStore) Save(ctx context.Context, slot string, data []byte) error {
	row := model.Slot{Name: slot, Data: data, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		logger.Error("Failed to save slot to database", err, map[string]interface{}{
			"slot":  slot,
			"bytes": len(data),
		})
		return err
	}

	logger.Debug("Slot saved to database", map[string]interface{}{
		"slot":  slot,
		"bytes": len(data),
	})
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, slot string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", slot).Delete(&model.Slot{}).Error; err != nil {
		logger.Error("Failed to delete slot from database", err, map[string]interface{}{
			"slot": slot,
		})
		return err
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
