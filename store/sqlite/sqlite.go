/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence port of the engine in one place. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  account.Store:          holidays accounts
  application.Store:      leave applications
  application.CommentStore, application.PersonStore
  sicknote.Store:         sick notes
  sicknote.CommentStore
  department.Store:       departments with member/head lists
  overtime.Store:         overtime records and comments
  calsync.MappingStore:   absence-to-event mappings
  mail.PersonDirectory:   recipient resolution
  workdays.HolidayCalendar: public holidays

KEY TABLES:
  persons:              staff with roles
  holidays_accounts:    one row per (person, year)
  applications:         leave applications with signatures
  application_comments: audit trail per application
  sick_notes:           sickness records
  sick_note_comments:   audit trail per sick note
  departments:          departments, plus member/head link tables
  overtimes:            overtime records, plus comments
  absence_mappings:     calendar event mappings
  public_holidays:      non-working days besides weekends

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/absence.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.
*/
package sqlite

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/harborhq/absence-engine/core"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		roles TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS holidays_accounts (
		person_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		valid_from TEXT NOT NULL,
		valid_to TEXT NOT NULL,
		annual_vacation_days TEXT NOT NULL,
		vacation_days TEXT NOT NULL,
		remaining_vacation_days TEXT NOT NULL,
		remaining_not_expiring TEXT NOT NULL,
		PRIMARY KEY (person_id, year)
	);

	CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		applier_id TEXT NOT NULL DEFAULT '',
		boss_id TEXT NOT NULL DEFAULT '',
		canceller_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		day_length TEXT NOT NULL,
		category TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		holiday_replacement TEXT NOT NULL DEFAULT '',
		team_informed BOOLEAN NOT NULL DEFAULT FALSE,
		application_date TEXT NOT NULL DEFAULT '',
		edited_date TEXT NOT NULL DEFAULT '',
		cancel_date TEXT NOT NULL DEFAULT '',
		signed_person BLOB,
		signed_boss BLOB
	);

	CREATE INDEX IF NOT EXISTS idx_applications_person_dates
		ON applications(person_id, start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_applications_status
		ON applications(status);

	CREATE TABLE IF NOT EXISTS application_comments (
		id TEXT PRIMARY KEY,
		application_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		action TEXT NOT NULL,
		date TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_application_comments_app
		ON application_comments(application_id, seq);

	CREATE TABLE IF NOT EXISTS sick_notes (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'SICK_NOTE',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		day_length TEXT NOT NULL DEFAULT 'FULL',
		aub_start_date TEXT NOT NULL DEFAULT '',
		aub_end_date TEXT NOT NULL DEFAULT '',
		work_days TEXT NOT NULL,
		active BOOLEAN NOT NULL,
		last_edited TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sick_notes_person_dates
		ON sick_notes(person_id, start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_sick_notes_active
		ON sick_notes(active);

	CREATE TABLE IF NOT EXISTS sick_note_comments (
		id TEXT PRIMARY KEY,
		sick_note_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		action TEXT NOT NULL,
		date TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sick_note_comments_note
		ON sick_note_comments(sick_note_id, seq);

	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		two_stage_approval BOOLEAN NOT NULL DEFAULT FALSE,
		last_modification TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS department_members (
		department_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		PRIMARY KEY (department_id, person_id)
	);

	CREATE INDEX IF NOT EXISTS idx_department_members_person
		ON department_members(person_id);

	CREATE TABLE IF NOT EXISTS department_heads (
		department_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		PRIMARY KEY (department_id, person_id)
	);

	CREATE INDEX IF NOT EXISTS idx_department_heads_person
		ON department_heads(person_id);

	CREATE TABLE IF NOT EXISTS overtimes (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		last_modification TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_overtimes_person_dates
		ON overtimes(person_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS overtime_comments (
		id TEXT PRIMARY KEY,
		overtime_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		date TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_overtime_comments_overtime
		ON overtime_comments(overtime_id, seq);

	CREATE TABLE IF NOT EXISTS absence_mappings (
		absence_id TEXT NOT NULL,
		absence_type TEXT NOT NULL,
		event_id TEXT NOT NULL,
		PRIMARY KEY (absence_id, absence_type)
	);

	CREATE TABLE IF NOT EXISTS public_holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

// newID returns a random identifier for new rows.
func newID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// dateString stores zero dates as empty strings.
func dateString(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// nextSeq orders comment rows within their parent.
func (s *Store) nextSeq(table, column, parent string) (int, error) {
	var seq sql.NullInt64
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT MAX(seq) FROM %s WHERE %s = ?", table, column),
		parent,
	).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return int(seq.Int64) + 1, nil
}
