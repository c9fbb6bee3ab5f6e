package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.PersistenceGateway = (*Store)(nil)

// imageScheme prefixes URLs of images held in the database.
const imageScheme = "sqlite://"

// Store is a SQLite implementation of driven.PersistenceGateway.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.refeel/data/refeel.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".refeel", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "refeel.db")

	// WAL lets the TUI read while a save is in flight.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every .up.sql file newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ==================== Exams ====================

const examColumns = `id, patient_name, patient_id, limb, location, therapist_name,
	device_model, date_time, created_at, last_edited`

// CreateExam stores a new exam under a fresh UUID.
func (s *Store) CreateExam(ctx context.Context, exam domain.Exam) (domain.Exam, error) {
	now := s.now().UTC()
	exam.ID = uuid.NewString()
	exam.CreatedAt = now
	exam.LastEdited = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exams (`+examColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, exam.ID, exam.PatientName, exam.PatientID, string(exam.Limb), string(exam.Location),
		exam.TherapistName, exam.DeviceModel, exam.DateTime.UTC(), exam.CreatedAt, exam.LastEdited)
	if err != nil {
		return domain.Exam{}, fmt.Errorf("saving exam: %w", err)
	}
	return exam, nil
}

// GetExam retrieves an exam by ID.
func (s *Store) GetExam(ctx context.Context, id string) (domain.Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+examColumns+` FROM exams WHERE id = ?`, id)
	exam, err := scanExam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Exam{}, domain.ErrNotFound
	}
	return exam, err
}

// FindExams returns exams matching patient name and ID, newest first.
func (s *Store) FindExams(ctx context.Context, patientName, patientID string) ([]domain.Exam, error) {
	return s.queryExams(ctx, `
		SELECT `+examColumns+` FROM exams
		WHERE patient_name = ? AND patient_id = ?
		ORDER BY date_time DESC, id
	`, patientName, patientID)
}

// ListPatientExams returns all exams of a patient, newest first.
func (s *Store) ListPatientExams(ctx context.Context, patientID string) ([]domain.Exam, error) {
	return s.queryExams(ctx, `
		SELECT `+examColumns+` FROM exams
		WHERE patient_id = ?
		ORDER BY date_time DESC, id
	`, patientID)
}

// UpdateExam overwrites an exam's editable fields.
func (s *Store) UpdateExam(ctx context.Context, exam domain.Exam) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE exams SET
			patient_name = ?, patient_id = ?, limb = ?, location = ?,
			therapist_name = ?, device_model = ?, date_time = ?, last_edited = ?
		WHERE id = ?
	`, exam.PatientName, exam.PatientID, string(exam.Limb), string(exam.Location),
		exam.TherapistName, exam.DeviceModel, exam.DateTime.UTC(), s.now().UTC(), exam.ID)
	if err != nil {
		return fmt.Errorf("updating exam: %w", err)
	}
	return requireRow(res)
}

func (s *Store) queryExams(ctx context.Context, query string, args ...any) ([]domain.Exam, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exams: %w", err)
	}
	defer rows.Close()

	exams := make([]domain.Exam, 0)
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exams: %w", err)
	}
	return exams, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExam(row scanner) (domain.Exam, error) {
	var exam domain.Exam
	var limb, location string
	if err := row.Scan(&exam.ID, &exam.PatientName, &exam.PatientID, &limb, &location,
		&exam.TherapistName, &exam.DeviceModel, &exam.DateTime, &exam.CreatedAt, &exam.LastEdited); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Exam{}, err
		}
		return domain.Exam{}, fmt.Errorf("scanning exam: %w", err)
	}
	exam.Limb = domain.Limb(limb)
	exam.Location = domain.Location(location)
	return exam, nil
}

// ==================== Points ====================

// CreatePoint stores a point under a fresh UUID.
func (s *Store) CreatePoint(ctx context.Context, examID string, fields domain.PointFields) (driven.PointReceipt, error) {
	if _, err := s.GetExam(ctx, examID); err != nil {
		return driven.PointReceipt{}, err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return driven.PointReceipt{}, fmt.Errorf("marshalling point: %w", err)
	}

	receipt := driven.PointReceipt{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO points (id, exam_id, sort_order, fields, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, receipt.ID, examID, fields.Order, string(data), receipt.CreatedAt)
	if err != nil {
		return driven.PointReceipt{}, fmt.Errorf("saving point: %w", err)
	}
	return receipt, nil
}

// UpdatePoint overwrites a point's fields.
func (s *Store) UpdatePoint(ctx context.Context, examID, pointID string, fields domain.PointFields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshalling point: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE points SET sort_order = ?, fields = ?
		WHERE id = ? AND exam_id = ?
	`, fields.Order, string(data), pointID, examID)
	if err != nil {
		return fmt.Errorf("updating point: %w", err)
	}
	return requireRow(res)
}

// DeletePoint removes a point record.
func (s *Store) DeletePoint(ctx context.Context, examID, pointID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM points WHERE id = ? AND exam_id = ?", pointID, examID)
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}

// ListPoints returns an exam's points sorted by order, then creation time.
func (s *Store) ListPoints(ctx context.Context, examID string) ([]domain.Point, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields, created_at FROM points
		WHERE exam_id = ?
		ORDER BY sort_order, created_at
	`, examID)
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}
	defer rows.Close()

	points := make([]domain.Point, 0)
	for rows.Next() {
		var id, data string
		var createdAt time.Time
		if err := rows.Scan(&id, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning point: %w", err)
		}
		var fields domain.PointFields
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("unmarshalling point %s: %w", id, err)
		}
		points = append(points, domain.PointFromFields(id, fields, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating points: %w", err)
	}
	return points, nil
}

// ==================== Images ====================

// UploadImage stores image bytes under a unique key.
func (s *Store) UploadImage(ctx context.Context, examID, pointID string, image []byte) (string, error) {
	stamp := s.stamp()
	url := imageScheme + domain.ImageKey(examID, pointID, stamp)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO images (url, exam_id, point_id, data, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
	`, url, examID, pointID, image, time.UnixMilli(stamp).UTC())
	if err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return url, nil
}

// DeleteImage removes an image. Missing images are ignored.
func (s *Store) DeleteImage(ctx context.Context, _, _, url string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM images WHERE url = ?", url); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// GetImage returns stored image bytes.
func (s *Store) GetImage(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM images WHERE url = ?", url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// stamp returns a strictly increasing millisecond timestamp.
func (s *Store) stamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.now().UnixMilli()
	if n <= s.lastStamp {
		n = s.lastStamp + 1
	}
	s.lastStamp = n
	return n
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
