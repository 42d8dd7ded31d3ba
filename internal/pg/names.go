package pg

import (
	"fmt"
	"strings"

	"sevalka/internal/dsl"
)

var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
	"drop": {}, "alter": {}, "schema": {}, "grant": {}, "revoke": {},
}

func isReserved(s string) bool { _, ok := reserved[strings.ToLower(s)]; return ok }

// элементарная плюрализация (достаточно для users, projects, ...)
func plural(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

// SchemaName: модуль (lower) как схема Postgres
func SchemaName(module string) string { return strings.ToLower(module) }

// TableName: plural(entity) с защитой от keyword'ов
func TableName(entity string) string {
	t := plural(entity)
	if isReserved(t) {
		t = "e_" + t
	}
	return t
}

// TableFQN возвращает квалифицированное имя таблицы сущности
func TableFQN(e *dsl.Entity) string {
	return fmt.Sprintf("%s.%s", Ident(SchemaName(e.Module)), Ident(TableName(e.Name)))
}

func Ident(s string) string { return `"` + strings.ToLower(s) + `"` }
