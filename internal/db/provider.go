package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnavailable wraps every failure to reach the store.
var ErrUnavailable = errors.New("database unavailable")

// Conn is the scoped-connection contract the repositories depend on.
type Conn interface {
	Acquire(ctx context.Context, fn func(db *gorm.DB) error) error
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Provider opens a fresh single-connection handle for every operation and
// closes it on every exit path. There is no pool shared between operations.
type Provider struct {
	open func() gorm.Dialector
	gcfg *gorm.Config
}

func NewProvider(open func() gorm.Dialector) *Provider {
	return &Provider{
		open: open,
		gcfg: &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		},
	}
}

func (p *Provider) Acquire(ctx context.Context, fn func(db *gorm.DB) error) error {
	gdb, err := gorm.Open(p.open(), p.gcfg)
	if err != nil {
		log.Printf("[db] connect failed err=%v", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Printf("[db] connect failed err=%v", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("[db] close failed err=%v", cerr)
		}
	}()
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	log.Printf("[db] connected")

	return fn(gdb.WithContext(ctx))
}

// Transaction runs fn inside one transaction that is committed once when fn
// returns nil and rolled back otherwise.
func (p *Provider) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.Acquire(ctx, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}
