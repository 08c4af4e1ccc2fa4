package repository

import (
	"context"
	"errors"
	"log"

	"github.com/shinyyama/revenue-dashboard/internal/db"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/reqctx"
	"gorm.io/gorm"
)

// BatchResult counts what happened to each row of one insert batch.
type BatchResult struct {
	Inserted   int
	Rejected   int
	Duplicates int
}

type RevenueRepository interface {
	InsertBatch(ctx context.Context, file *model.ImportedFile, records []model.RevenueRecord) (BatchResult, error)
	All(ctx context.Context) ([]model.RevenueRecord, error)
	Count(ctx context.Context) (int64, error)
}

type revenueRepository struct {
	conn db.Conn
}

func NewRevenueRepository(conn db.Conn) RevenueRepository {
	return &revenueRepository{conn: conn}
}

// InsertBatch writes every row in one transaction committed once. Rows are
// attempted one by one: a rejected row (duplicate key or otherwise) is logged
// and skipped, and rows before it stay in the batch. When file is not nil it
// is added to the import ledger in the same transaction; if the filename is
// already there the whole batch rolls back with ErrAlreadyImported.
func (r *revenueRepository) InsertBatch(ctx context.Context, file *model.ImportedFile, records []model.RevenueRecord) (BatchResult, error) {
	var res BatchResult
	if r.conn == nil {
		return res, ErrDBNotReady
	}
	importID := reqctx.ImportID(ctx)
	err := r.conn.Transaction(ctx, func(tx *gorm.DB) error {
		for i := range records {
			rec := records[i]
			if err := tx.Create(&rec).Error; err != nil {
				res.Rejected++
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					res.Duplicates++
				}
				log.Printf("[import] id=%s stage=insert_row date=%s city=%d plan=%s err=%v",
					importID, rec.DateString(), rec.CityCode, rec.Plan, err)
				continue
			}
			res.Inserted++
		}
		if file == nil {
			return nil
		}
		var seen int64
		if err := tx.Model(&model.ImportedFile{}).Where("filename = ?", file.Filename).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			return ErrAlreadyImported
		}
		file.RowCount = res.Inserted
		if err := tx.Create(file).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyImported
			}
			return err
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}
	return res, nil
}

func (r *revenueRepository) All(ctx context.Context) ([]model.RevenueRecord, error) {
	if r.conn == nil {
		return nil, ErrDBNotReady
	}
	var list []model.RevenueRecord
	err := r.conn.Acquire(ctx, func(tx *gorm.DB) error {
		return tx.Order("date").Order("city_code").Order("plans").Find(&list).Error
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *revenueRepository) Count(ctx context.Context) (int64, error) {
	if r.conn == nil {
		return 0, ErrDBNotReady
	}
	var n int64
	err := r.conn.Acquire(ctx, func(tx *gorm.DB) error {
		return tx.Model(&model.RevenueRecord{}).Count(&n).Error
	})
	return n, err
}
