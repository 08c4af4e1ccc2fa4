package archive

import (
	"context"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Archiver keeps a copy of each imported raw file.
type Archiver interface {
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

// GCSArchiver writes raw uploads to a Cloud Storage bucket under
// uploads/YYYY/MM/DD/<uuid>-<filename>.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// ClientOptions turns the optional storage settings into client options.
// An endpoint without credentials is treated as a local emulator.
func ClientOptions(credentialsFile, endpoint string) []option.ClientOption {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
		if credentialsFile == "" {
			opts = append(opts, option.WithoutAuthentication())
		}
	}
	return opts
}

func NewGCSArchiver(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket, now: time.Now}, nil
}

func (a *GCSArchiver) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	objectPath := ObjectPath(a.now(), uuid.NewString(), filename)
	w := a.client.Bucket(a.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = "text/csv"
	w.Metadata = map[string]string{
		"originalFilename": filename,
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", objectPath, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, objectPath), nil
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

// ObjectPath builds the bucket key for one upload. Only the base name of the
// uploaded file is kept.
func ObjectPath(at time.Time, id, filename string) string {
	return path.Join("uploads", at.UTC().Format("2006/01/02"), id+"-"+path.Base(filename))
}
