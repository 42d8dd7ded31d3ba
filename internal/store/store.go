// Package store содержит хранилища записей: in-memory (для тестов и
// локальных прогонов) и Postgres. Движок генерации не различает их и не
// разбирает причины отказов — любой отказ значит «пока нельзя».
package store

import (
	"context"
	"fmt"
	"time"

	"sevalka/internal/dsl"
)

// Record — созданная запись. Движок читает из неё только значения полей,
// на которые указывают to= чужих ссылок (плюс системный id).
type Record struct {
	ID        string         `json:"id"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Data      map[string]any `json:"data"`
}

// Get читает поле записи; системные колонки доступны наравне с данными
func (r *Record) Get(field string) (any, bool) {
	switch field {
	case "id":
		return r.ID, true
	case "version":
		return r.Version, true
	case "created_at":
		return r.CreatedAt, true
	case "updated_at":
		return r.UpdatedAt, true
	}
	v, ok := r.Data[field]
	return v, ok
}

// Connect — инструкция «привязать по ключу»: для поля-ссылки Field задаёт
// значения ключевых полей цели (to-поле -> значение из первой созданной
// записи цели), вместо встраивания новых данных.
type Connect struct {
	Field  string         // имя ref-поля схемы
	Target string         // FQN целевой сущности
	Keys   map[string]any // to-поле цели -> значение
}

// Payload — данные одной попытки создания/обновления
type Payload struct {
	Values   map[string]any
	Connects []Connect
}

// Store — контракт хранилища. Create/Update либо возвращают запись, либо
// ошибку; Close освобождает ресурсы и обязан вызываться на любом исходе.
type Store interface {
	Create(ctx context.Context, fqn string, p Payload) (*Record, error)
	Update(ctx context.Context, fqn, id string, p Payload) (*Record, error)
	Close() error
}

// flattenPayload раскладывает payload в плоскую карту колонок: значения
// скаляров плюс FK-колонки, заполненные из connect-инструкций (from[i]
// получает значение ключа to[i]).
func flattenPayload(e *dsl.Entity, p Payload) (map[string]any, error) {
	values := make(map[string]any, len(p.Values)+len(p.Connects))
	for k, v := range p.Values {
		values[k] = v
	}

	for _, c := range p.Connects {
		f, ok := fieldByName(e, c.Field)
		if !ok {
			return nil, fmt.Errorf("connect: %s has no field %q", e.FQN(), c.Field)
		}
		from, to := f.From(), f.To()
		if len(from) != len(to) {
			return nil, fmt.Errorf("connect: %s.%s from/to arity mismatch", e.FQN(), c.Field)
		}
		for i := range from {
			v, ok := c.Keys[to[i]]
			if !ok {
				return nil, fmt.Errorf("connect: %s.%s missing key %q", e.FQN(), c.Field, to[i])
			}
			values[from[i]] = v
		}
	}
	return values, nil
}

func fieldByName(e *dsl.Entity, name string) (dsl.Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return dsl.Field{}, false
}
