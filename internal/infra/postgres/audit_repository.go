package postgres

import (
	"context"
	"time"
)

// AuditEntry describes one conversion outcome. It never carries the HTML or
// the produced PDF.
type AuditEntry struct {
	RequestID  string
	ClientIP   string
	Status     int
	Stage      string
	DurationMS int64
	InputBytes int
	PDFBytes   int
	CreatedAt  time.Time
}

// AuditRepository appends conversion outcomes to the conversion_audit table.
type AuditRepository struct {
	DB  *DB
	DSN string
}

func NewAuditRepository(db *DB, dsn string) *AuditRepository {
	return &AuditRepository{DB: db, DSN: dsn}
}

const auditDDL = `CREATE TABLE IF NOT EXISTS conversion_audit (
	id BIGSERIAL PRIMARY KEY,
	request_id TEXT NOT NULL,
	client_ip TEXT NOT NULL,
	status INTEGER NOT NULL,
	stage TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL,
	input_bytes INTEGER NOT NULL,
	pdf_bytes INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const auditIndexDDL = `CREATE INDEX IF NOT EXISTS idx_conversion_audit_created_at ON conversion_audit (created_at);`

// EnsureSchema creates the audit table and its index when missing.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	db, err := r.DB.Get(r.DSN)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, auditDDL); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, auditIndexDDL)
	return err
}

// Record inserts e. A zero CreatedAt is stamped with the current time.
func (r *AuditRepository) Record(ctx context.Context, e AuditEntry) error {
	db, err := r.DB.Get(r.DSN)
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err = db.ExecContext(ctx,
		`INSERT INTO conversion_audit (request_id, client_ip, status, stage, duration_ms, input_bytes, pdf_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.RequestID, e.ClientIP, e.Status, e.Stage, e.DurationMS, e.InputBytes, e.PDFBytes, e.CreatedAt,
	)
	return err
}
