package reqctx

import "context"

type ctxKey string

const (
	keyImportID ctxKey = "import_id"
	keyFilename ctxKey = "import_filename"
)

// WithImportID stores the correlation id of one file import.
func WithImportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyImportID, id)
}

// ImportID returns the import correlation id if present.
func ImportID(ctx context.Context) string {
	v, _ := ctx.Value(keyImportID).(string)
	return v
}

// WithFilename stores the name of the file being imported.
func WithFilename(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyFilename, name)
}

// Filename returns the file being imported if present.
func Filename(ctx context.Context) string {
	v, _ := ctx.Value(keyFilename).(string)
	return v
}
