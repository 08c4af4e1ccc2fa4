package repository

import "errors"

var (
	ErrDBNotReady = errors.New("database not initialized")
	// ErrNoData is returned by single-row reports when the table is empty.
	ErrNoData = errors.New("no data")
	// ErrAlreadyImported means the filename is already in the ledger.
	ErrAlreadyImported = errors.New("file already imported")
)
