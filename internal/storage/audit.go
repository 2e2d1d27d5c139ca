package storage

import (
	"context"
	"time"

	chdriver "github.com/ClickHouse/clickhouse-go/v2"
)

// AuditEntry is one record written to an AuditSink alongside the
// transactional Postgres audit row.
type AuditEntry struct {
	MemoryID  string
	Action    string
	Detail    string
	Timestamp time.Time
}

// AuditSink receives a copy of every audit entry the engine writes. The
// Postgres audit_log table is always written transactionally; a sink is
// an optional additional destination for high-volume analytical queries
// over audit history.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
	Close() error
}

// ClickHouseAuditSink appends audit entries to a ClickHouse table suited
// to high-ingest, append-only analytical workloads — the spec's audit
// and version history retained at much larger scale than the relational
// store alone would comfortably serve.
type ClickHouseAuditSink struct {
	conn chdriver.Conn
}

// NewClickHouseAuditSink opens a connection to the given ClickHouse DSN
// and ensures the audit table exists.
func NewClickHouseAuditSink(ctx context.Context, addr, database, username, password string) (*ClickHouseAuditSink, error) {
	conn, err := chdriver.Open(&chdriver.Options{
		Addr: []string{addr},
		Auth: chdriver.Auth{Database: database, Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS cortex_audit_log (
		memory_id String,
		action String,
		detail String,
		recorded_at DateTime64(3)
	) ENGINE = MergeTree() ORDER BY (memory_id, recorded_at)`); err != nil {
		return nil, err
	}
	return &ClickHouseAuditSink{conn: conn}, nil
}

func (s *ClickHouseAuditSink) Record(ctx context.Context, entry AuditEntry) error {
	return s.conn.Exec(ctx, `INSERT INTO cortex_audit_log (memory_id, action, detail, recorded_at) VALUES ($1,$2,$3,$4)`,
		entry.MemoryID, entry.Action, entry.Detail, entry.Timestamp)
}

func (s *ClickHouseAuditSink) Close() error {
	return s.conn.Close()
}

// NoopAuditSink discards every entry; used when no analytical sink is
// configured.
type NoopAuditSink struct{}

func (NoopAuditSink) Record(context.Context, AuditEntry) error { return nil }
func (NoopAuditSink) Close() error                              { return nil }
