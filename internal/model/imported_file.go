package model

import "time"

// ImportedFile is one row of the import ledger. A filename is recorded once
// and never updated.
type ImportedFile struct {
	Filename   string    `gorm:"column:filename;primaryKey;size:255"`
	Checksum   string    `gorm:"column:checksum;size:16;not null;default:''"`
	RowCount   int       `gorm:"column:row_count;not null;default:0"`
	ImportedAt time.Time `gorm:"column:imported_at;autoCreateTime"`
}

func (ImportedFile) TableName() string {
	return "imported_files"
}
