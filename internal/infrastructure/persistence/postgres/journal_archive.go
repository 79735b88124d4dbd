package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alem-hub/reportcard/internal/domain/journal"
	"github.com/alem-hub/reportcard/pkg/retry"
)

const insertJournalRecord = `
	INSERT INTO journal_archive (id, operation_type, student_id, student_name, recorded_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING
`

// JournalArchive stores drained journal records in journal_archive.
// Records are keyed by their ID, so a retried batch does not duplicate rows.
type JournalArchive struct {
	conn *Connection
}

// NewJournalArchive creates a new JournalArchive.
func NewJournalArchive(conn *Connection) *JournalArchive {
	return &JournalArchive{conn: conn}
}

// Name identifies the sink.
func (a *JournalArchive) Name() string {
	return "postgres"
}

// Archive inserts records in one transaction using a pipelined batch.
func (a *JournalArchive) Archive(ctx context.Context, records []journal.Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := archiveBatch(records)

	err := a.conn.WithTx(ctx, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for i := range records {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to archive record %s: %w", records[i].ID, err)
			}
		}
		return br.Close()
	})
	return classifyArchiveError(err)
}

// classifyArchiveError marks data exceptions (class 22) and integrity
// violations (class 23) as permanent: the same batch would fail again.
func classifyArchiveError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")) {
		return retry.Permanent(err)
	}
	return err
}

func archiveBatch(records []journal.Record) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insertJournalRecord, archiveArgs(r)...)
	}
	return batch
}

func archiveArgs(r journal.Record) []any {
	return []any{r.ID, string(r.OperationType), r.StudentID, r.StudentName, r.RecordedAt.UTC()}
}
