package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/airenas/dubber/internal/pkg/persistence"
	"github.com/airenas/dubber/internal/pkg/status"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB provides operations with postgresql
type DB struct {
	pool *pgxpool.Pool
}

//NewDB creates DB instance
func NewDB(pool *pgxpool.Pool) (*DB, error) {
	res := &DB{pool: pool}
	return res, nil
}

// InsertUpload inserts audio upload row into DB
func (db *DB) InsertUpload(ctx context.Context, item *persistence.AudioUpload) error {
	rows, err := db.pool.Query(ctx, `INSERT INTO audio_uploads(id, filename, original_audio_url, transcription_text,
	status, file_size_bytes, duration_seconds, email, created_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`, item.ID, item.Filename, item.OriginalAudioURL,
		item.TranscriptionText, item.Status, item.FileSizeBytes, item.DurationSeconds, item.Email, item.Created)
	if err != nil {
		return fmt.Errorf("can't insert upload: %w", err)
	}
	defer rows.Close()
	return nil
}

// LoadUpload loads upload from DB, returns nil if no record exists
func (db *DB) LoadUpload(ctx context.Context, id string) (*persistence.AudioUpload, error) {
	var res persistence.AudioUpload
	err := db.pool.QueryRow(ctx, `SELECT id, filename, original_audio_url, transcription_text, status,
	file_size_bytes, duration_seconds, email, created_at FROM audio_uploads
		WHERE id = $1`, id).Scan(&res.ID, &res.Filename, &res.OriginalAudioURL, &res.TranscriptionText,
		&res.Status, &res.FileSizeBytes, &res.DurationSeconds, &res.Email, &res.Created)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load upload: %w", err)
	}
	return &res, nil
}

// LoadUploads loads newest uploads from DB
func (db *DB) LoadUploads(ctx context.Context) ([]*persistence.AudioUpload, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, filename, original_audio_url, transcription_text, status,
	file_size_bytes, duration_seconds, email, created_at FROM audio_uploads
		ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("can't load uploads: %w", err)
	}
	defer rows.Close()
	res := []*persistence.AudioUpload{}
	for rows.Next() {
		var item persistence.AudioUpload
		if err := rows.Scan(&item.ID, &item.Filename, &item.OriginalAudioURL, &item.TranscriptionText,
			&item.Status, &item.FileSizeBytes, &item.DurationSeconds, &item.Email, &item.Created); err != nil {
			return nil, fmt.Errorf("can't load uploads: %w", err)
		}
		res = append(res, &item)
	}
	return res, nil
}

// UpdateTranscription writes transcription text and moves upload to completed.
// Touches only rows still in a transient status - terminal statuses never change again.
func (db *DB) UpdateTranscription(ctx context.Context, id, text string) error {
	rows, err := db.pool.Exec(ctx, `UPDATE audio_uploads SET
	transcription_text = $2,
	status = $3
	WHERE id = $1 and not (status = any($4))`, id, text, status.Completed.String(), terminalStatuses())
	if err != nil {
		return fmt.Errorf("can't update upload: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't update upload %s, no transient record found", id)
	}
	return nil
}

// UpdateUploadStatus moves upload to the wanted status if it is still transient
func (db *DB) UpdateUploadStatus(ctx context.Context, id string, st status.Status) error {
	rows, err := db.pool.Exec(ctx, `UPDATE audio_uploads SET
	status = $2
	WHERE id = $1 and not (status = any($3))`, id, st.String(), terminalStatuses())
	if err != nil {
		return fmt.Errorf("can't update upload: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't update upload %s, no transient record found", id)
	}
	return nil
}

// InsertDubbing inserts dubbing row into DB
func (db *DB) InsertDubbing(ctx context.Context, item *persistence.Dubbing) error {
	rows, err := db.pool.Query(ctx, `INSERT INTO dubbings(id, audio_upload_id, target_language, voice_id,
	dubbed_audio_url, status, created_at)
	VALUES($1, $2, $3, $4, $5, $6, $7)`, item.ID, item.AudioUploadID, item.TargetLanguage, item.VoiceID,
		item.DubbedAudioURL, item.Status, item.Created)
	if err != nil {
		return fmt.Errorf("can't insert dubbing: %w", err)
	}
	defer rows.Close()
	return nil
}

// LoadDubbing loads dubbing from DB, returns nil if no record exists
func (db *DB) LoadDubbing(ctx context.Context, id string) (*persistence.Dubbing, error) {
	var res persistence.Dubbing
	err := db.pool.QueryRow(ctx, `SELECT id, audio_upload_id, target_language, voice_id, dubbed_audio_url,
	status, created_at FROM dubbings
		WHERE id = $1`, id).Scan(&res.ID, &res.AudioUploadID, &res.TargetLanguage, &res.VoiceID,
		&res.DubbedAudioURL, &res.Status, &res.Created)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load dubbing: %w", err)
	}
	return &res, nil
}

// LoadDubbings loads all dubbings of one upload
func (db *DB) LoadDubbings(ctx context.Context, uploadID string) ([]*persistence.Dubbing, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, audio_upload_id, target_language, voice_id, dubbed_audio_url,
	status, created_at FROM dubbings
		WHERE audio_upload_id = $1 ORDER BY created_at DESC`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("can't load dubbings: %w", err)
	}
	defer rows.Close()
	res := []*persistence.Dubbing{}
	for rows.Next() {
		var item persistence.Dubbing
		if err := rows.Scan(&item.ID, &item.AudioUploadID, &item.TargetLanguage, &item.VoiceID,
			&item.DubbedAudioURL, &item.Status, &item.Created); err != nil {
			return nil, fmt.Errorf("can't load dubbings: %w", err)
		}
		res = append(res, &item)
	}
	return res, nil
}

// UpdateDubbing moves a processing dubbing to a terminal status, keeps old URL if none passed
func (db *DB) UpdateDubbing(ctx context.Context, id string, st status.Status, url sql.NullString) error {
	rows, err := db.pool.Exec(ctx, `UPDATE dubbings SET
	status = $2,
	dubbed_audio_url = COALESCE($3, dubbed_audio_url)
	WHERE id = $1 and status = $4`, id, st.String(), url, status.Processing.String())
	if err != nil {
		return fmt.Errorf("can't update dubbing: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't update dubbing %s, no processing record found", id)
	}
	return nil
}

// LockEmailTable marks email as being sent for ID and msg type
func (db *DB) LockEmailTable(ctx context.Context, id, msgType string) error {
	rows, err := db.pool.Exec(ctx, `INSERT INTO email_lock(id, msg_type, value) VALUES($1, $2, 1)
	ON CONFLICT (id, msg_type) DO UPDATE SET value = 1 WHERE email_lock.value = 0`, id, msgType)
	if err != nil {
		return fmt.Errorf("can't lock email table: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't lock email table for %s/%s", id, msgType)
	}
	return nil
}

// UnLockEmailTable resets email lock value after sending
func (db *DB) UnLockEmailTable(ctx context.Context, id, msgType string, value *int) error {
	_, err := db.pool.Exec(ctx, `UPDATE email_lock SET value = $3 WHERE id = $1 and msg_type = $2`,
		id, msgType, *value)
	if err != nil {
		return fmt.Errorf("can't unlock email table: %w", err)
	}
	return nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'audio_uploads')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}

func terminalStatuses() []string {
	return []string{status.Completed.String(), status.Failed.String()}
}
