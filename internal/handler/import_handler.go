package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/revenue-dashboard/internal/model"
	"github.com/shinyyama/revenue-dashboard/internal/service"
)

const uploadField = "files"

type ImportHandler struct {
	svc service.ImportService
}

func NewImportHandler(svc service.ImportService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

type OutcomeResponse struct {
	ImportID   string `json:"importId"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Inserted   int    `json:"inserted"`
	Rejected   int    `json:"rejected"`
	Duplicates int    `json:"duplicates"`
	Dropped    int    `json:"dropped"`
	Malformed  int    `json:"malformed"`
	ArchiveURL string `json:"archiveUrl,omitempty"`
}

type ImportResponse struct {
	Results []OutcomeResponse `json:"results"`
}

type ImportedFileResponse struct {
	Filename   string `json:"filename"`
	Checksum   string `json:"checksum"`
	RowCount   int    `json:"rowCount"`
	ImportedAt string `json:"importedAt"`
}

// Upload accepts one or more CSV files in the multipart field "files". Each
// file gets its own outcome; the request itself only fails when the form is
// unreadable.
func (h *ImportHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid multipart form"))
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "no files uploaded"))
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read "+fh.Filename))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "failed to read "+fh.Filename))
		}
		uploads = append(uploads, service.Upload{Filename: filepath.Base(fh.Filename), Data: data})
	}

	outcomes := h.svc.ProcessFiles(c.Request().Context(), uploads)
	resp := ImportResponse{Results: make([]OutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		resp.Results = append(resp.Results, toOutcomeResponse(o))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ImportHandler) History(c echo.Context) error {
	files, err := h.svc.History(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch import history"))
	}
	resp := make([]ImportedFileResponse, 0, len(files))
	for i := range files {
		resp = append(resp, toImportedFileResponse(&files[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"files": resp})
}

func toOutcomeResponse(o service.Outcome) OutcomeResponse {
	return OutcomeResponse{
		ImportID:   o.ImportID,
		Filename:   o.Filename,
		Status:     string(o.Status),
		Message:    o.Message,
		Inserted:   o.Inserted,
		Rejected:   o.Rejected,
		Duplicates: o.Duplicates,
		Dropped:    o.Dropped,
		Malformed:  o.Malformed,
		ArchiveURL: o.ArchiveURL,
	}
}

func toImportedFileResponse(f *model.ImportedFile) ImportedFileResponse {
	return ImportedFileResponse{
		Filename:   f.Filename,
		Checksum:   f.Checksum,
		RowCount:   f.RowCount,
		ImportedAt: f.ImportedAt.Format(time.RFC3339),
	}
}
