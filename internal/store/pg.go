package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"sevalka/internal/dsl"
	"sevalka/internal/pg"
)

// Postgres — хранилище поверх database/sql (драйвер pgx). Ограничения
// целостности (not null, fk, unique) проверяет сама база — любая ошибка
// вставки для движка означает «отложить и повторить».
type Postgres struct {
	db      *sql.DB
	schemas map[string]*dsl.Entity
	entropy io.Reader
}

func NewPostgres(db *sql.DB, entities map[string]*dsl.Entity) *Postgres {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Postgres{
		db:      db,
		schemas: entities,
		entropy: ulid.Monotonic(src, 0),
	}
}

func (s *Postgres) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Postgres) Create(ctx context.Context, fqn string, p Payload) (*Record, error) {
	e, ok := s.schemas[fqn]
	if !ok {
		return nil, fmt.Errorf("create %s: unknown entity", fqn)
	}

	values, err := flattenPayload(e, p)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &Record{
		ID:        s.newID(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      values,
	}

	cols := []string{`"id"`, `"version"`, `"created_at"`, `"updated_at"`}
	args := []any{rec.ID, rec.Version, rec.CreatedAt, rec.UpdatedAt}
	for _, name := range sortedKeys(values) {
		cols = append(cols, pg.Ident(name))
		args = append(args, encodeValue(values[name]))
	}

	ph := make([]string, len(args))
	for i := range args {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("insert into %s (%s) values (%s)",
		pg.TableFQN(e), strings.Join(cols, ", "), strings.Join(ph, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create %s: %w", fqn, err)
	}
	return rec, nil
}

func (s *Postgres) Update(ctx context.Context, fqn, id string, p Payload) (*Record, error) {
	e, ok := s.schemas[fqn]
	if !ok {
		return nil, fmt.Errorf("update %s: unknown entity", fqn)
	}

	values, err := flattenPayload(e, p)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sets := []string{`"version" = "version" + 1`, `"updated_at" = $1`}
	args := []any{now}
	for _, name := range sortedKeys(values) {
		args = append(args, encodeValue(values[name]))
		sets = append(sets, fmt.Sprintf("%s = $%d", pg.Ident(name), len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf("update %s set %s where \"id\" = $%d",
		pg.TableFQN(e), strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", fqn, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("update %s: record %s not found", fqn, id)
	}

	return &Record{ID: id, UpdatedAt: now, Data: values}, nil
}

func (s *Postgres) Close() error { return s.db.Close() }

// encodeValue переводит вложенные структуры (json, массивы) в jsonb-представление
func encodeValue(v any) any {
	switch v.(type) {
	case map[string]any, []any, []string:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return b
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
