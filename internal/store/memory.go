package store

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"sevalka/internal/dsl"
)

// Memory — in-memory хранилище со схемной валидацией на записи. Проверки
// required/unique/ref работают как в настоящем хранилище, поэтому отказ
// создания здесь — тот же сигнал планировщику, что и от Postgres.
type Memory struct {
	mu      sync.RWMutex
	schemas map[string]*dsl.Entity
	data    map[string]map[string]*Record
	entropy io.Reader
}

func NewMemory(entities map[string]*dsl.Entity) *Memory {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Memory{
		schemas: entities,
		data:    make(map[string]map[string]*Record),
		entropy: ulid.Monotonic(src, 0),
	}
}

func (s *Memory) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Create валидирует payload против схемы и кладёт запись
func (s *Memory) Create(ctx context.Context, fqn string, p Payload) (*Record, error) {
	e, ok := s.schemas[fqn]
	if !ok {
		return nil, fmt.Errorf("create %s: unknown entity", fqn)
	}

	values, err := flattenPayload(e, p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := s.validateLocked(e, fqn, values, ""); len(errs) > 0 {
		return nil, fmt.Errorf("create %s: %s", fqn, strings.Join(errs, "; "))
	}

	if s.data[fqn] == nil {
		s.data[fqn] = make(map[string]*Record)
	}
	now := time.Now().UTC()
	rec := &Record{
		ID:        s.newID(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      values,
	}
	s.data[fqn][rec.ID] = rec
	return rec, nil
}

// Update частично обновляет запись по id
func (s *Memory) Update(ctx context.Context, fqn, id string, p Payload) (*Record, error) {
	e, ok := s.schemas[fqn]
	if !ok {
		return nil, fmt.Errorf("update %s: unknown entity", fqn)
	}

	values, err := flattenPayload(e, p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.data[fqn][id]
	if rec == nil {
		return nil, fmt.Errorf("update %s: record %s not found", fqn, id)
	}

	if errs := s.validatePatchLocked(e, fqn, values, id); len(errs) > 0 {
		return nil, fmt.Errorf("update %s: %s", fqn, strings.Join(errs, "; "))
	}

	for k, v := range values {
		rec.Data[k] = v
	}
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	return rec, nil
}

func (s *Memory) Close() error { return nil }

// Len возвращает число живых записей сущности (для тестов и отчётов)
func (s *Memory) Len(fqn string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[fqn])
}

// Records возвращает снимок записей сущности
func (s *Memory) Records(fqn string) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.data[fqn]))
	for _, rec := range s.data[fqn] {
		out = append(out, rec)
	}
	return out
}

// validateLocked — проверки на создание: required, unique, существование целей ссылок
func (s *Memory) validateLocked(e *dsl.Entity, fqn string, values map[string]any, excludeID string) []string {
	var errs []string

	// required: для одиночной ссылки должны быть заполнены все её FK-колонки,
	// для скаляра — само поле; массивы не блокируют
	for _, f := range e.Fields {
		if !f.IsRequired() || f.IsList() {
			continue
		}
		if f.IsRelation() {
			for _, col := range f.From() {
				if _, ok := values[col]; !ok {
					errs = append(errs, fmt.Sprintf("field %q is required (fk column %q unset)", f.Name, col))
				}
			}
			continue
		}
		if _, ok := values[f.Name]; !ok {
			errs = append(errs, fmt.Sprintf("field %q is required", f.Name))
		}
	}

	errs = append(errs, s.checkUniqueLocked(e, fqn, values, excludeID)...)
	errs = append(errs, s.checkRefsLocked(e, values)...)
	return errs
}

// validatePatchLocked — проверки на частичное обновление (required не смотрим)
func (s *Memory) validatePatchLocked(e *dsl.Entity, fqn string, values map[string]any, excludeID string) []string {
	errs := s.checkUniqueLocked(e, fqn, values, excludeID)
	return append(errs, s.checkRefsLocked(e, values)...)
}

func (s *Memory) checkUniqueLocked(e *dsl.Entity, fqn string, values map[string]any, excludeID string) []string {
	var errs []string
	for _, f := range e.Fields {
		if !f.IsUnique() {
			continue
		}
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		needle := stringify(v)
		for id, rec := range s.data[fqn] {
			if id == excludeID {
				continue
			}
			if got, ok := rec.Data[f.Name]; ok && stringify(got) == needle {
				errs = append(errs, fmt.Sprintf("field %q must be unique", f.Name))
				break
			}
		}
	}
	return errs
}

// checkRefsLocked проверяет, что заполненные FK-колонки указывают на живые записи
func (s *Memory) checkRefsLocked(e *dsl.Entity, values map[string]any) []string {
	var errs []string
	for _, f := range e.Fields {
		if !f.IsRelation() || f.IsList() {
			continue
		}
		target, ok := dsl.ResolveTarget(s.schemas, e, f.RefTarget)
		if !ok {
			continue
		}

		from, to := f.From(), f.To()
		if len(from) != len(to) {
			continue
		}
		// собираем ключ цели из локальных колонок; частично заполненный
		// ключ не проверяем — required-проверка уже отработала
		keys := make(map[string]any, len(from))
		complete := true
		for i := range from {
			v, ok := values[from[i]]
			if !ok {
				complete = false
				break
			}
			keys[to[i]] = v
		}
		if !complete || len(keys) == 0 {
			continue
		}

		if !s.matchExistsLocked(target, keys) {
			errs = append(errs, fmt.Sprintf("field %q references missing %s record", f.Name, target))
		}
	}
	return errs
}

func (s *Memory) matchExistsLocked(fqn string, keys map[string]any) bool {
	for _, rec := range s.data[fqn] {
		match := true
		for field, want := range keys {
			got, ok := rec.Get(field)
			if !ok || stringify(got) != stringify(want) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}
