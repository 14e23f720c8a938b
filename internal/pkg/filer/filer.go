package filer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options keeps minio connection config
type Options struct {
	URL       string
	User      string
	Key       string
	Bucket    string
	PublicURL string
	Secure    bool
}

// Filer saves and loads audio blobs in minio and provides their public URLs
type Filer struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewFiler creates Filer instance, makes the bucket if it does not exist
func NewFiler(ctx context.Context, opts Options) (*Filer, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("no filer URL")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("no bucket")
	}
	if opts.PublicURL == "" {
		return nil, fmt.Errorf("no public URL")
	}
	mc, err := minio.New(opts.URL, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.User, opts.Key, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("can't init minio client: %w", err)
	}
	res := &Filer{client: mc, bucket: opts.Bucket, publicURL: strings.TrimSuffix(opts.PublicURL, "/")}
	exists, err := mc.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("can't check bucket: %w", err)
	}
	if !exists {
		goapp.Log.Info().Str("bucket", opts.Bucket).Msg("creating bucket")
		if err := mc.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("can't create bucket: %w", err)
		}
	}
	return res, nil
}

// SaveFile puts the object into the bucket
func (f *Filer) SaveFile(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	goapp.Log.Info().Str("name", name).Int64("size", size).Msg("save file")
	_, err := f.client.PutObject(ctx, f.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("can't save '%s': %w", name, err)
	}
	return nil
}

// LoadFile returns reader of the stored object
func (f *Filer) LoadFile(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	goapp.Log.Info().Str("name", name).Msg("load file")
	obj, err := f.client.GetObject(ctx, f.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("can't load '%s': %w", name, err)
	}
	// GetObject is lazy, fail early on missing objects
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("can't load '%s': %w", name, err)
	}
	return obj, nil
}

// Delete removes the object, no error if it does not exist
func (f *Filer) Delete(ctx context.Context, name string) error {
	goapp.Log.Info().Str("name", name).Msg("delete file")
	if err := f.client.RemoveObject(ctx, f.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("can't delete '%s': %w", name, err)
	}
	return nil
}

// PublicURL returns externally fetchable address of the object
func (f *Filer) PublicURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", f.publicURL, f.bucket, name)
}

// ObjectKey extracts the object key from a public URL made by this filer
func (f *Filer) ObjectKey(urlStr string) (string, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("can't parse url '%s': %w", urlStr, err)
	}
	prefix := "/" + f.bucket + "/"
	i := strings.Index(u.Path, prefix)
	if i < 0 {
		return "", fmt.Errorf("no bucket '%s' in url '%s'", f.bucket, urlStr)
	}
	key := u.Path[i+len(prefix):]
	if key == "" {
		return "", fmt.Errorf("no object key in url '%s'", urlStr)
	}
	return key, nil
}
