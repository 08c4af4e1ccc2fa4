package repository

import (
	"context"

	"github.com/shinyyama/revenue-dashboard/internal/db"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"gorm.io/gorm"
)

type LedgerRepository interface {
	IsImported(ctx context.Context, filename string) (bool, error)
	List(ctx context.Context) ([]model.ImportedFile, error)
}

type ledgerRepository struct {
	conn db.Conn
}

func NewLedgerRepository(conn db.Conn) LedgerRepository {
	return &ledgerRepository{conn: conn}
}

func (r *ledgerRepository) IsImported(ctx context.Context, filename string) (bool, error) {
	if r.conn == nil {
		return false, ErrDBNotReady
	}
	var n int64
	err := r.conn.Acquire(ctx, func(tx *gorm.DB) error {
		return tx.Model(&model.ImportedFile{}).Where("filename = ?", filename).Count(&n).Error
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ledgerRepository) List(ctx context.Context) ([]model.ImportedFile, error) {
	if r.conn == nil {
		return nil, ErrDBNotReady
	}
	var list []model.ImportedFile
	err := r.conn.Acquire(ctx, func(tx *gorm.DB) error {
		return tx.Order("imported_at DESC").Order("filename").Find(&list).Error
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
