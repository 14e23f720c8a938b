package postgres

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cleaner removes upload related records
type Cleaner struct {
	pool *pgxpool.Pool
}

// NewCleaner creates Cleaner instance
func NewCleaner(pool *pgxpool.Pool) (*Cleaner, error) {
	res := &Cleaner{pool: pool}
	return res, nil
}

// DeleteUpload removes dubbings of the upload, email locks and then the upload row itself
func (db *Cleaner) DeleteUpload(ctx context.Context, id string) error {
	for _, st := range []struct{ name, sql string }{
		{"dubbings", `DELETE FROM dubbings WHERE audio_upload_id = $1`},
		{"email_lock", `DELETE FROM email_lock WHERE id = $1`},
		{"audio_uploads", `DELETE FROM audio_uploads WHERE id = $1`},
	} {
		cmd, err := db.pool.Exec(ctx, st.sql, id)
		if err != nil {
			return fmt.Errorf("can't delete %s(%s): %w", id, st.name, err)
		}
		goapp.Log.Info().Str("ID", id).Str("table", st.name).Int64("rows", cmd.RowsAffected()).Msg("deleted")
	}
	return nil
}

// DeleteDubbing removes one dubbing row, the parent upload stays
func (db *Cleaner) DeleteDubbing(ctx context.Context, id string) error {
	cmd, err := db.pool.Exec(ctx, `DELETE FROM dubbings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("can't delete %s(dubbings): %w", id, err)
	}
	goapp.Log.Info().Str("ID", id).Str("table", "dubbings").Int64("rows", cmd.RowsAffected()).Msg("deleted")
	return nil
}
