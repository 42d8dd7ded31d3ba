package dsl

import "strings"

// Entity описывает структуру сущности из DSL
type Entity struct {
	Module      string
	Name        string
	Fields      []Field
	Constraints Constraints
}

// Constraints — составные ограничения сущности (пока только unique)
type Constraints struct {
	Unique [][]string
}

// FQN возвращает полное имя "module.Name"
func (e *Entity) FQN() string {
	return e.Module + "." + e.Name
}

// Field описывает поле сущности
type Field struct {
	Name      string
	Type      string   // string, int, float, bool, date, datetime, json, enum, ref, array
	ElemType  string   // тип элемента для array
	Enum      []string // значения enum, если поле типа enum
	RefTarget string   // цель ссылки для ref / array[ref]

	// FK-метаданные ссылки: какие локальные колонки несут ключ (from=)
	// и на какие поля цели они указывают (to=). Пустые списки означают
	// дефолт: from = само поле-ссылка, to = id.
	FromFields []string
	ToFields   []string

	Options map[string]string // required, unique, pk, readonly и прочие опции
}

// IsRelation — поле-ссылка (одиночная или массив ссылок)
func (f Field) IsRelation() bool {
	if strings.EqualFold(f.Type, "ref") {
		return true
	}
	return strings.EqualFold(f.Type, "array") && strings.EqualFold(f.ElemType, "ref")
}

// IsList — массив (скалярный или массив ссылок)
func (f Field) IsList() bool {
	return strings.EqualFold(f.Type, "array")
}

func (f Field) hasFlag(name string) bool {
	if f.Options == nil {
		return false
	}
	return strings.EqualFold(f.Options[name], "true")
}

func (f Field) IsRequired() bool   { return f.hasFlag("required") }
func (f Field) IsUnique() bool     { return f.hasFlag("unique") }
func (f Field) IsIdentifier() bool { return f.hasFlag("pk") }
func (f Field) IsReadOnly() bool   { return f.hasFlag("readonly") }

// From возвращает локальные FK-колонки ссылки (с дефолтом — само поле)
func (f Field) From() []string {
	if len(f.FromFields) > 0 {
		return f.FromFields
	}
	return []string{f.Name}
}

// To возвращает ключевые поля цели (с дефолтом — id)
func (f Field) To() []string {
	if len(f.ToFields) > 0 {
		return f.ToFields
	}
	return []string{"id"}
}
