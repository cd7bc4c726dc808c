package monster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"yaopedia/pkg/apperr"
	"yaopedia/pkg/models"
)

// queryTimeout bounds every store operation so a slow database degrades to
// a reported failure instead of a hanging request.
const queryTimeout = 30 * time.Second

const defaultLimit = 50

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Category string // exact match against the category enum
	Search   string // case-insensitive substring over name OR description
	Page     int
	Limit    int
}

type ListResult struct {
	Items      []models.Monster
	Total      int
	Page       int
	TotalPages int
}

const monsterColumns = `id, name, category, image_url, appearance, distribution, description, abilities, sources, lat, lng, created_at, updated_at`

// List returns one page of monsters, most recently created first.
// Category and search filters compose with AND. Zero matches is an empty
// page with TotalPages 0, not an error.
func (r *Repo) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	countSQL, countArgs := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, storeErr("count monsters", err)
	}

	listSQL, listArgs := buildListSQL(q, false)
	rows, err := r.DB.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, storeErr("list monsters", err)
	}
	defer rows.Close()

	items := make([]models.Monster, 0, q.Limit)
	for rows.Next() {
		m, err := scanMonster(rows)
		if err != nil {
			return nil, storeErr("scan monster row", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate monster rows", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
	}, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Monster, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctx, `SELECT `+monsterColumns+` FROM monsters WHERE id = ?`, id)
	m, err := scanMonster(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.E(apperr.KindNotFound, "monster not found", nil)
		}
		return nil, storeErr("get monster", err)
	}
	return m, nil
}

// Create validates the payload, assigns id and timestamps, and inserts.
// A duplicate name surfaces as a conflict, relying on the store's unique
// constraint so concurrent racers resolve to exactly one winner.
func (r *Repo) Create(ctx context.Context, m *models.Monster) (*models.Monster, error) {
	if err := m.Validate(); err != nil {
		return nil, apperr.E(apperr.KindValidation, err.Error(), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	m.ID = uuid.NewString()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Abilities == nil {
		m.Abilities = []string{}
	}
	if m.Sources == nil {
		m.Sources = []models.Citation{}
	}

	abilities, sources, lat, lng := encodeFields(m)

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO monsters (`+monsterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Category, m.ImageURL, m.Appearance, m.Distribution, m.Description,
		abilities, sources, lat, lng, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.E(apperr.KindConflict, "monster name already exists", err)
		}
		return nil, storeErr("insert monster", err)
	}
	return m, nil
}

// Update applies a partial payload on top of the stored record and
// re-validates before writing. The read-modify-write is not transactional;
// the store only guarantees per-record atomicity for the final write.
func (r *Repo) Update(ctx context.Context, id string, patch *models.MonsterPatch) (*models.Monster, error) {
	m, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(m)
	if err := m.Validate(); err != nil {
		return nil, apperr.E(apperr.KindValidation, err.Error(), nil)
	}
	m.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	abilities, sources, lat, lng := encodeFields(m)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE monsters
		SET name = ?, category = ?, image_url = ?, appearance = ?, distribution = ?,
		    description = ?, abilities = ?, sources = ?, lat = ?, lng = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, m.Category, m.ImageURL, m.Appearance, m.Distribution, m.Description,
		abilities, sources, lat, lng, m.UpdatedAt, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.E(apperr.KindConflict, "monster name already exists", err)
		}
		return nil, storeErr("update monster", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.E(apperr.KindNotFound, "monster not found", nil)
	}
	return m, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctx, `DELETE FROM monsters WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete monster", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.E(apperr.KindNotFound, "monster not found", nil)
	}
	return nil
}

// Count returns the total number of stored monsters.
func (r *Repo) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM monsters`).Scan(&total); err != nil {
		return 0, storeErr("count monsters", err)
	}
	return total, nil
}

// buildListSQL builds either COUNT(*) or the SELECT page. The search path
// is a LIKE substring match, not the fts index: LOWER folds ASCII case and
// leaves CJK untouched, so 狐 matches 九尾狐 and "FOX" matches "fox".
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	sqlStr := `SELECT ` + monsterColumns + ` FROM monsters`
	if countOnly {
		sqlStr = `SELECT COUNT(*) FROM monsters`
	}

	var where []string
	var args []any

	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, "(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')")
		kw := "%" + escapeLike(strings.ToLower(s)) + "%"
		args = append(args, kw, kw)
	}

	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		// rowid breaks created_at ties so page walks are stable
		sqlStr += " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
		args = append(args, q.Limit, (q.Page-1)*q.Limit)
	}

	return sqlStr, args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func encodeFields(m *models.Monster) (abilities, sources string, lat, lng any) {
	ab, _ := json.Marshal(m.Abilities)
	src, _ := json.Marshal(m.Sources)
	if m.Location != nil {
		return string(ab), string(src), m.Location.Lat, m.Location.Lng
	}
	return string(ab), string(src), nil, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonster(row rowScanner) (*models.Monster, error) {
	var (
		m             models.Monster
		abilitiesJSON string
		sourcesJSON   string
		lat, lng      sql.NullFloat64
	)

	if err := row.Scan(
		&m.ID, &m.Name, &m.Category, &m.ImageURL, &m.Appearance, &m.Distribution,
		&m.Description, &abilitiesJSON, &sourcesJSON, &lat, &lng, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	m.Abilities = []string{}
	m.Sources = []models.Citation{}
	_ = json.Unmarshal([]byte(abilitiesJSON), &m.Abilities)
	_ = json.Unmarshal([]byte(sourcesJSON), &m.Sources)
	if lat.Valid && lng.Valid {
		m.Location = &models.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.E(apperr.KindUnavailable, "store query timed out", fmt.Errorf("%s: %w", op, err))
	}
	return apperr.E(apperr.KindInternal, op+" failed", err)
}
