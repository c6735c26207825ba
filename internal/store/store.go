// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/shotlog/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a bean or shot does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for beans and shots.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	return OpenWithLogger(path, zerolog.Nop())
}

// OpenWithLogger is Open with a logger for best-effort cleanup failures.
func OpenWithLogger(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	st := &Store{db: db, log: log}
	if err := st.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close after failed migration")
		}
		return nil, err
	}
	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS beans (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			roast_date TEXT,
			created_at TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			last_grinder_setting TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS shots (
			id TEXT PRIMARY KEY,
			bean_id TEXT NOT NULL REFERENCES beans(id),
			coffee_weight_in REAL NOT NULL,
			coffee_weight_out REAL NOT NULL,
			extraction_time_seconds INTEGER NOT NULL,
			grinder_setting TEXT NOT NULL,
			notes TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_shots_bean_timestamp ON shots(bean_id, timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_shots_timestamp ON shots(timestamp);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateBean stores a new active bean. Active bean names are unique.
func (s *Store) CreateBean(ctx context.Context, name string, roastDate *time.Time) (model.Bean, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Bean{}, errors.New("bean name is required")
	}
	if _, err := s.findActiveBeanByName(ctx, name); err == nil {
		return model.Bean{}, fmt.Errorf("bean %q already exists", name)
	} else if !errors.Is(err, ErrNotFound) {
		return model.Bean{}, err
	}

	bean := model.Bean{
		ID:        uuid.NewString(),
		Name:      name,
		RoastDate: roastDate,
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO beans (id, name, roast_date, created_at, is_active) VALUES (?, ?, ?, ?, 1)`,
		bean.ID, bean.Name, formatOptionalTime(roastDate), bean.CreatedAt.Format(timeLayout))
	if err != nil {
		return model.Bean{}, err
	}
	return bean, nil
}

// GetBean returns a bean by id.
func (s *Store) GetBean(ctx context.Context, id string) (model.Bean, error) {
	row := s.db.QueryRowContext(ctx, beanSelect+` WHERE id = ?`, id)
	return scanBean(row)
}

// FindBean resolves a bean by id or by active name.
func (s *Store) FindBean(ctx context.Context, idOrName string) (model.Bean, error) {
	bean, err := s.GetBean(ctx, idOrName)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return bean, err
	}
	return s.findActiveBeanByName(ctx, idOrName)
}

func (s *Store) findActiveBeanByName(ctx context.Context, name string) (model.Bean, error) {
	row := s.db.QueryRowContext(ctx, beanSelect+` WHERE name = ? COLLATE NOCASE AND is_active = 1`, name)
	return scanBean(row)
}

// ListBeans returns beans ordered by creation time.
func (s *Store) ListBeans(ctx context.Context, includeInactive bool) ([]model.Bean, error) {
	query := beanSelect
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var beans []model.Bean
	for rows.Next() {
		bean, err := scanBean(rows)
		if err != nil {
			return nil, err
		}
		beans = append(beans, bean)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return beans, nil
}

// UpdateBeanGrinderSetting records the grinder setting last used with a bean.
func (s *Store) UpdateBeanGrinderSetting(ctx context.Context, id, setting string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE beans SET last_grinder_setting = ? WHERE id = ?`, setting, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeactivateBean soft-deletes a bean; its shots are kept.
func (s *Store) DeactivateBean(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE beans SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// InsertShot stores a shot and updates the bean's last grinder setting.
// A missing id or timestamp is filled in.
func (s *Store) InsertShot(ctx context.Context, shot model.Shot) (stored model.Shot, err error) {
	if err := shot.Validate(); err != nil {
		return model.Shot{}, err
	}
	if shot.ID == "" {
		shot.ID = uuid.NewString()
	}
	if shot.Timestamp.IsZero() {
		shot.Timestamp = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Shot{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.log.Warn().Err(rerr).Msg("rollback insert shot")
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO shots (id, bean_id, coffee_weight_in, coffee_weight_out, extraction_time_seconds, grinder_setting, notes, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		shot.ID,
		shot.BeanID,
		shot.CoffeeWeightIn,
		shot.CoffeeWeightOut,
		shot.ExtractionTimeSeconds,
		shot.GrinderSetting,
		shot.Notes,
		shot.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return model.Shot{}, err
	}
	var res sql.Result
	res, err = tx.ExecContext(ctx, `UPDATE beans SET last_grinder_setting = ? WHERE id = ?`, shot.GrinderSetting, shot.BeanID)
	if err != nil {
		return model.Shot{}, err
	}
	if err = expectAffected(res); err != nil {
		return model.Shot{}, fmt.Errorf("bean %s: %w", shot.BeanID, err)
	}
	if err = tx.Commit(); err != nil {
		return model.Shot{}, err
	}
	return shot, nil
}

// GetShot returns a shot by id.
func (s *Store) GetShot(ctx context.Context, id string) (model.Shot, error) {
	row := s.db.QueryRowContext(ctx, shotSelect+` WHERE id = ?`, id)
	return scanShot(row)
}

// DeleteShot removes a shot.
func (s *Store) DeleteShot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ListShots returns shots ordered by timestamp ascending. Last keeps the newest N.
func (s *Store) ListShots(ctx context.Context, filter model.ShotFilter) ([]model.Shot, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.BeanID != "" {
		clauses = append(clauses, "bean_id = ?")
		args = append(args, filter.BeanID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`%s WHERE %s ORDER BY timestamp ASC`, shotSelect, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var shots []model.Shot
	for rows.Next() {
		shot, err := scanShot(rows)
		if err != nil {
			return nil, err
		}
		shots = append(shots, shot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(shots) > filter.Last {
		shots = shots[len(shots)-filter.Last:]
	}
	return shots, nil
}

const (
	// Fixed-width UTC timestamps keep lexical order equal to chronological order.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	beanSelect = `SELECT id, name, roast_date, created_at, is_active, last_grinder_setting FROM beans`
	shotSelect = `SELECT id, bean_id, coffee_weight_in, coffee_weight_out, extraction_time_seconds, grinder_setting, notes, timestamp FROM shots`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanBean(row scanner) (model.Bean, error) {
	var (
		bean      model.Bean
		roastDate sql.NullString
		createdAt string
		active    int
		setting   sql.NullString
	)
	if err := row.Scan(&bean.ID, &bean.Name, &roastDate, &createdAt, &active, &setting); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Bean{}, ErrNotFound
		}
		return model.Bean{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Bean{}, err
	}
	bean.CreatedAt = parsed
	bean.IsActive = active != 0
	if roastDate.Valid {
		rd, err := time.Parse(time.RFC3339Nano, roastDate.String)
		if err != nil {
			return model.Bean{}, err
		}
		bean.RoastDate = &rd
	}
	if setting.Valid {
		v := setting.String
		bean.LastGrinderSetting = &v
	}
	return bean, nil
}

func scanShot(row scanner) (model.Shot, error) {
	var (
		shot model.Shot
		ts   string
	)
	if err := row.Scan(&shot.ID, &shot.BeanID, &shot.CoffeeWeightIn, &shot.CoffeeWeightOut,
		&shot.ExtractionTimeSeconds, &shot.GrinderSetting, &shot.Notes, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Shot{}, ErrNotFound
		}
		return model.Shot{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return model.Shot{}, err
	}
	shot.Timestamp = parsed
	return shot, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatOptionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func (s *Store) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close rows")
	}
}
