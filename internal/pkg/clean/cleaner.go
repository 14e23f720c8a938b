package clean

import (
	"context"
	"fmt"

	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/utils"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pkg/errors"
)

// DB loads records for cleaning
type DB interface {
	LoadUpload(ctx context.Context, id string) (*persistence.AudioUpload, error)
	LoadDubbings(ctx context.Context, uploadID string) ([]*persistence.Dubbing, error)
	LoadDubbing(ctx context.Context, id string) (*persistence.Dubbing, error)
}

// FileCleaner removes stored audio
type FileCleaner interface {
	Delete(ctx context.Context, name string) error
	ObjectKey(urlStr string) (string, error)
}

// DBCleaner drops records with dependencies
type DBCleaner interface {
	DeleteUpload(ctx context.Context, id string) error
	DeleteDubbing(ctx context.Context, id string) error
}

// UploadCleaner removes the upload, its dubbings and all stored audio
type UploadCleaner struct {
	db        DB
	files     FileCleaner
	dbCleaner DBCleaner
}

// NewUploadCleaner creates upload cleaner
func NewUploadCleaner(db DB, files FileCleaner, dbCleaner DBCleaner) (*UploadCleaner, error) {
	if db == nil {
		return nil, errors.New("no db")
	}
	if files == nil {
		return nil, errors.New("no file cleaner")
	}
	if dbCleaner == nil {
		return nil, errors.New("no db cleaner")
	}
	return &UploadCleaner{db: db, files: files, dbCleaner: dbCleaner}, nil
}

// Clean removes all upload data
// blob deletes are best-effort, the db cascade is the authoritative part
func (c *UploadCleaner) Clean(ctx context.Context, id string) error {
	goapp.Log.Info().Str("ID", id).Msg("cleaning upload")
	up, err := c.db.LoadUpload(ctx, id)
	if err != nil {
		return fmt.Errorf("can't load upload: %w", err)
	}
	if up == nil {
		goapp.Log.Warn().Str("ID", id).Msg("no upload record")
		return nil
	}
	dbs, err := c.db.LoadDubbings(ctx, id)
	if err != nil {
		return fmt.Errorf("can't load dubbings: %w", err)
	}
	for _, d := range dbs {
		deleteBlob(ctx, c.files, utils.FromSQLStr(d.DubbedAudioURL))
	}
	deleteBlob(ctx, c.files, up.OriginalAudioURL)
	return c.dbCleaner.DeleteUpload(ctx, id)
}

// DubbingCleaner removes one dubbing and its stored audio
type DubbingCleaner struct {
	db        DB
	files     FileCleaner
	dbCleaner DBCleaner
}

// NewDubbingCleaner creates dubbing cleaner
func NewDubbingCleaner(db DB, files FileCleaner, dbCleaner DBCleaner) (*DubbingCleaner, error) {
	if db == nil {
		return nil, errors.New("no db")
	}
	if files == nil {
		return nil, errors.New("no file cleaner")
	}
	if dbCleaner == nil {
		return nil, errors.New("no db cleaner")
	}
	return &DubbingCleaner{db: db, files: files, dbCleaner: dbCleaner}, nil
}

// Clean removes one dubbing
func (c *DubbingCleaner) Clean(ctx context.Context, id string) error {
	goapp.Log.Info().Str("ID", id).Msg("cleaning dubbing")
	d, err := c.db.LoadDubbing(ctx, id)
	if err != nil {
		return fmt.Errorf("can't load dubbing: %w", err)
	}
	if d == nil {
		goapp.Log.Warn().Str("ID", id).Msg("no dubbing record")
		return nil
	}
	deleteBlob(ctx, c.files, utils.FromSQLStr(d.DubbedAudioURL))
	return c.dbCleaner.DeleteDubbing(ctx, id)
}

func deleteBlob(ctx context.Context, files FileCleaner, urlStr string) {
	if urlStr == "" {
		return
	}
	key, err := files.ObjectKey(urlStr)
	if err != nil {
		goapp.Log.Warn().Err(err).Str("url", urlStr).Msg("can't resolve object key")
		return
	}
	if err := files.Delete(ctx, key); err != nil {
		goapp.Log.Warn().Err(err).Str("file", key).Msg("can't delete file")
	}
}
