/*
Package sqlite provides a SQLite-backed implementation of engine.RecordStore.

PURPOSE:
  Persists the latest raw allocation snapshot from the backend so the
  dashboards can be recomputed without refetching. The backend remains the
  source of truth; this store is a cache of its last response.

SNAPSHOT SEMANTICS:
  Replace() runs inside a single SQL transaction: delete everything, insert
  the new snapshot. Readers never observe a partial ingest.

KEY TABLES:
  allocation_records: one row per raw record (Planned and Actual)
  time_segments:      one row per logged segment, FK to its record row

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so snapshot reads do not
  block an in-flight Replace.

USAGE:
  st, err := sqlite.New("./data/allocations.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - engine/store.go: Interface definition
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/allocation-engine/engine"
)

// Store implements engine.RecordStore using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS allocation_records (
		row_id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		record_id INTEGER NOT NULL,
		back_reference INTEGER NOT NULL DEFAULT 0,
		order_item_id INTEGER NOT NULL,
		order_item_key TEXT NOT NULL,
		employee_id INTEGER NOT NULL,
		employee_name TEXT NOT NULL,
		customer_name TEXT,
		product_name TEXT,
		project_name TEXT,
		activity_name TEXT,
		activity_id INTEGER NOT NULL,
		start_date TEXT,
		end_date TEXT,
		effort TEXT NOT NULL,
		effort_unit TEXT,
		items_count INTEGER NOT NULL DEFAULT 0,
		remarks TEXT,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS time_segments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		record_row_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		segment_date TEXT NOT NULL,
		encoded_event TEXT,
		remarks TEXT,
		items_count INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (record_row_id) REFERENCES allocation_records(row_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_records_employee
		ON allocation_records(employee_id);
	CREATE INDEX IF NOT EXISTS idx_segments_record
		ON time_segments(record_row_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE IMPLEMENTATION
// =============================================================================

// Replace atomically swaps the stored snapshot for records.
func (s *Store) Replace(ctx context.Context, records []*engine.RawAllocationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM allocation_records`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	insertRecord, err := tx.PrepareContext(ctx, `
		INSERT INTO allocation_records (
			kind, record_id, back_reference, order_item_id, order_item_key,
			employee_id, employee_name, customer_name, product_name,
			project_name, activity_name, activity_id, start_date, end_date,
			effort, effort_unit, items_count, remarks, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertRecord.Close()

	insertSegment, err := tx.PrepareContext(ctx, `
		INSERT INTO time_segments (
			record_row_id, seq, segment_date, encoded_event, remarks, items_count
		) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertSegment.Close()

	for _, r := range records {
		var (
			backRef    int64
			itemsCount int
			status     string
			segments   []engine.TimeSegmentRecord
		)
		if r.Actual != nil {
			backRef = r.Actual.BackReference
			itemsCount = r.Actual.ItemsCount
			status = r.Actual.Status
			segments = r.Actual.TimeSegments
		}

		res, err := insertRecord.ExecContext(ctx,
			string(r.Kind), r.ID, backRef, r.OrderItemID, r.OrderItemKey,
			r.EmployeeID, r.EmployeeName, r.CustomerName, r.ProductName,
			r.ProjectName, r.ActivityName, r.ActivityID,
			r.StartDate.Token(), r.EndDate.Token(),
			r.Effort.String(), r.EffortUnit, itemsCount, r.Remarks, status,
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", r.ID, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for seq, seg := range segments {
			if _, err := insertSegment.ExecContext(ctx,
				rowID, seq, seg.Date.Token(), seg.EncodedEvent, seg.Remarks, seg.ItemsCount,
			); err != nil {
				return fmt.Errorf("insert segment for record %d: %w", r.ID, err)
			}
		}
	}

	return tx.Commit()
}

// LoadAll returns the current snapshot in stored order.
func (s *Store) LoadAll(ctx context.Context) ([]*engine.RawAllocationRecord, error) {
	return s.load(ctx, ``, nil)
}

// LoadByEmployee returns the snapshot filtered to one employee.
func (s *Store) LoadByEmployee(ctx context.Context, employeeID int64) ([]*engine.RawAllocationRecord, error) {
	return s.load(ctx, `WHERE employee_id = ?`, []any{employeeID})
}

func (s *Store) load(ctx context.Context, where string, args []any) ([]*engine.RawAllocationRecord, error) {
	query := `
		SELECT row_id, kind, record_id, back_reference, order_item_id,
		       order_item_key, employee_id, employee_name, customer_name,
		       product_name, project_name, activity_name, activity_id,
		       start_date, end_date, effort, effort_unit, items_count,
		       remarks, status
		FROM allocation_records ` + where + ` ORDER BY row_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	var (
		records []*engine.RawAllocationRecord
		byRowID = make(map[int64]*engine.RawAllocationRecord)
	)
	for rows.Next() {
		var (
			rowID                int64
			kind                 string
			backRef              int64
			startTok, endTok     string
			effortStr            string
			itemsCount           int
			status               string
			r                    engine.RawAllocationRecord
		)
		if err := rows.Scan(
			&rowID, &kind, &r.ID, &backRef, &r.OrderItemID,
			&r.OrderItemKey, &r.EmployeeID, &r.EmployeeName, &r.CustomerName,
			&r.ProductName, &r.ProjectName, &r.ActivityName, &r.ActivityID,
			&startTok, &endTok, &effortStr, &r.EffortUnit, &itemsCount,
			&r.Remarks, &status,
		); err != nil {
			return nil, err
		}

		r.Kind = engine.RecordKind(kind)
		r.StartDate, _ = engine.ParseTokenDate(startTok)
		r.EndDate, _ = engine.ParseTokenDate(endTok)
		if d, err := decimal.NewFromString(effortStr); err == nil {
			r.Effort = d
		}
		if r.Kind == engine.KindActual {
			r.Actual = &engine.ActualFields{
				BackReference: backRef,
				ItemsCount:    itemsCount,
				Status:        status,
			}
		}

		rec := &r
		records = append(records, rec)
		byRowID[rowID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	if err := s.attachSegments(ctx, byRowID); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) attachSegments(ctx context.Context, byRowID map[int64]*engine.RawAllocationRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_row_id, segment_date, encoded_event, remarks, items_count
		FROM time_segments
		ORDER BY record_row_id, seq`)
	if err != nil {
		return fmt.Errorf("load segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rowID   int64
			dateTok string
			seg     engine.TimeSegmentRecord
		)
		if err := rows.Scan(&rowID, &dateTok, &seg.EncodedEvent, &seg.Remarks, &seg.ItemsCount); err != nil {
			return err
		}
		rec, ok := byRowID[rowID]
		if !ok || rec.Actual == nil {
			continue
		}
		seg.Date, _ = engine.ParseTokenDate(dateTok)
		rec.Actual.TimeSegments = append(rec.Actual.TimeSegments, seg)
	}
	return rows.Err()
}

var _ engine.RecordStore = (*Store)(nil)
