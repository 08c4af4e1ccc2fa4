package db

import (
	"context"
	"log"

	"github.com/shinyyama/revenue-dashboard/internal/model"
	"gorm.io/gorm"
)

// EnsureSchema creates the import ledger and the revenue table when absent.
func EnsureSchema(ctx context.Context, conn Conn) error {
	err := conn.Acquire(ctx, func(db *gorm.DB) error {
		return db.AutoMigrate(&model.ImportedFile{}, &model.RevenueRecord{})
	})
	if err != nil {
		log.Printf("[db] ensure schema failed err=%v", err)
		return err
	}
	log.Printf("[db] schema ready")
	return nil
}
