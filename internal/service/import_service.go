package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shinyyama/revenue-dashboard/internal/archive"
	"github.com/shinyyama/revenue-dashboard/internal/ingest"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/reqctx"
	"github.com/shinyyama/revenue-dashboard/internal/repository"
)

type ImportStatus string

const (
	ImportSkipped  ImportStatus = "skipped"
	ImportImported ImportStatus = "imported"
	ImportFailed   ImportStatus = "failed"
)

type Upload struct {
	Filename string
	Data     []byte
}

// Outcome is the terminal state of one file plus the counts behind it.
type Outcome struct {
	ImportID   string
	Filename   string
	Status     ImportStatus
	Message    string
	Inserted   int
	Rejected   int
	Duplicates int
	Dropped    int
	Malformed  int
	ArchiveURL string
	Err        error
}

type ImportService interface {
	ProcessFile(ctx context.Context, filename string, data []byte) Outcome
	ProcessFiles(ctx context.Context, uploads []Upload) []Outcome
	History(ctx context.Context) ([]model.ImportedFile, error)
}

type importService struct {
	ledger   repository.LedgerRepository
	revenue  repository.RevenueRepository
	archiver archive.Archiver
}

// NewImportService wires the pipeline. archiver may be nil.
func NewImportService(ledger repository.LedgerRepository, revenue repository.RevenueRepository, archiver archive.Archiver) ImportService {
	return &importService{ledger: ledger, revenue: revenue, archiver: archiver}
}

// ProcessFiles handles uploads one after another; a failed file does not stop
// the ones after it.
func (s *importService) ProcessFiles(ctx context.Context, uploads []Upload) []Outcome {
	out := make([]Outcome, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, s.ProcessFile(ctx, u.Filename, u.Data))
	}
	return out
}

func (s *importService) ProcessFile(ctx context.Context, filename string, data []byte) Outcome {
	filename = strings.TrimSpace(filename)
	o := Outcome{ImportID: uuid.NewString(), Filename: filename}
	if filename == "" {
		return o.fail(errors.New("filename is required"), "Error: the uploaded file has no name.")
	}
	ctx = reqctx.WithFilename(reqctx.WithImportID(ctx, o.ImportID), filename)
	start := time.Now()

	imported, err := s.ledger.IsImported(ctx, filename)
	if err != nil {
		logStage(ctx, "check_fail", "err=%v", err)
		return o.fail(err, fmt.Sprintf("Unexpected error with file '%s': could not check the import ledger.", filename))
	}
	if imported {
		logStage(ctx, "skipped", "")
		o.Status = ImportSkipped
		o.Message = fmt.Sprintf("The file '%s' has already been imported.", filename)
		return o
	}

	parsed, err := ingest.Parse(data)
	if err != nil {
		logStage(ctx, "parse_fail", "err=%v", err)
		switch {
		case errors.Is(err, ingest.ErrMissingColumns):
			return o.fail(err, fmt.Sprintf("Error: The file '%s' is missing required columns (%v).", filename, err))
		case errors.Is(err, ingest.ErrMalformedCSV):
			return o.fail(err, fmt.Sprintf("Error parsing the file '%s'. Please ensure the file is a valid CSV.", filename))
		default:
			return o.fail(err, fmt.Sprintf("Error processing file '%s': %v", filename, err))
		}
	}
	o.Dropped = parsed.Dropped
	o.Malformed = parsed.Malformed
	logStage(ctx, "parsed", "rows=%d dropped=%d malformed=%d", len(parsed.Records), parsed.Dropped, parsed.Malformed)

	ledgerRow := &model.ImportedFile{
		Filename: filename,
		Checksum: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}
	batch, err := s.revenue.InsertBatch(ctx, ledgerRow, parsed.Records)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyImported) {
			logStage(ctx, "skipped", "reason=ledger_conflict")
			o.Status = ImportSkipped
			o.Message = fmt.Sprintf("The file '%s' has already been imported.", filename)
			return o
		}
		logStage(ctx, "persist_fail", "err=%v", err)
		return o.fail(err, fmt.Sprintf("Error processing file '%s': %v", filename, err))
	}
	o.Inserted = batch.Inserted
	o.Rejected = batch.Rejected
	o.Duplicates = batch.Duplicates
	o.Status = ImportImported
	o.Message = fmt.Sprintf("Data from '%s' imported successfully.", filename)
	logStage(ctx, "imported", "inserted=%d rejected=%d duplicates=%d totalMs=%d",
		batch.Inserted, batch.Rejected, batch.Duplicates, time.Since(start).Milliseconds())

	if s.archiver != nil {
		url, err := s.archiver.Archive(ctx, filename, data)
		if err != nil {
			logStage(ctx, "archive_fail", "err=%v", err)
		} else {
			o.ArchiveURL = url
		}
	}
	return o
}

func (s *importService) History(ctx context.Context) ([]model.ImportedFile, error) {
	return s.ledger.List(ctx)
}

func (o Outcome) fail(err error, msg string) Outcome {
	o.Status = ImportFailed
	o.Message = msg
	o.Err = err
	return o
}

func logStage(ctx context.Context, stage, format string, args ...interface{}) {
	detail := ""
	if format != "" {
		detail = " " + fmt.Sprintf(format, args...)
	}
	log.Printf("[import] id=%s file=%q stage=%s%s", reqctx.ImportID(ctx), reqctx.Filename(ctx), stage, detail)
}
