package pg

import (
	"fmt"
	"sort"
	"strings"

	"sevalka/internal/dsl"
)

func mapType(f dsl.Field) (string, error) {
	switch strings.ToLower(f.Type) {
	case "string":
		return "text", nil
	case "int":
		return "bigint", nil
	case "float":
		return "double precision", nil
	case "bool":
		return "boolean", nil
	case "date":
		return "date", nil
	case "datetime":
		return "timestamp with time zone", nil
	case "json":
		return "jsonb", nil
	case "enum":
		// пока как text; генерить enum types можно отдельно
		return "text", nil
	case "ref":
		return "text", nil // ключ целевой записи
	case "array":
		// массивы маппим в jsonb
		return "jsonb", nil
	default:
		return "", fmt.Errorf("unknown type: %s", f.Type)
	}
}

// GenerateDDL возвращает карту имя-фазы -> SQL (schemas+tables+unique, затем FK).
// Ожидается idempotent DDL: create ... if not exists.
func GenerateDDL(entities map[string]*dsl.Entity) (map[string]string, error) {
	out := make(map[string]string, 2)

	// стабильный порядок сущностей
	keys := make([]string, 0, len(entities))
	for k := range entities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	type fkStmt struct {
		table, name   string
		cols, refCols []string
		refTable      string
	}
	var fks []fkStmt

	// --- Phase A: schemas + tables + unique ---
	var phaseA strings.Builder
	seenSchemas := map[string]struct{}{}

	for _, fqnKey := range keys {
		e := entities[fqnKey]
		mod := SchemaName(e.Module)

		if _, ok := seenSchemas[mod]; !ok {
			fmt.Fprintf(&phaseA, "create schema if not exists %s;\n", Ident(mod))
			seenSchemas[mod] = struct{}{}
		}

		// системные колонки
		cols := []string{
			`"id" text primary key`,
			`"version" bigint not null`,
			`"created_at" timestamp with time zone not null`,
			`"updated_at" timestamp with time zone not null`,
		}
		seen := map[string]struct{}{"id": {}, "version": {}, "created_at": {}, "updated_at": {}}

		for _, f := range e.Fields {
			nameLower := strings.ToLower(f.Name)
			if _, exists := seen[nameLower]; exists {
				return nil, fmt.Errorf("%s: field %q duplicates a system or duplicate column", fqnKey, f.Name)
			}
			seen[nameLower] = struct{}{}

			typ, err := mapType(f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", fqnKey, f.Name, err)
			}

			null := "null"
			// NOT NULL только когда FK-колонка — само поле: при явном from=
			// ограничение и так лежит на скалярной колонке
			if f.IsRequired() && (!f.IsRelation() || len(f.FromFields) == 0) {
				null = "not null"
			}
			def := ""
			if dv := f.Options["default"]; strings.TrimSpace(dv) != "" {
				def = fmt.Sprintf(" default '%s'", dv)
			}
			cols = append(cols, fmt.Sprintf("%s %s %s%s", Ident(f.Name), typ, null, def))
		}

		fmt.Fprintf(&phaseA, "create table if not exists %s (\n  %s\n);\n",
			TableFQN(e), strings.Join(cols, ",\n  "))

		// unique по одному полю
		for _, f := range e.Fields {
			if !f.IsUnique() {
				continue
			}
			fmt.Fprintf(&phaseA, "create unique index if not exists %s_%s_uq on %s(%s);\n",
				strings.ToLower(e.Name), strings.ToLower(f.Name), TableFQN(e), Ident(f.Name))
		}

		// unique составные
		for _, set := range e.Constraints.Unique {
			if len(set) == 0 {
				continue
			}
			idxName := strings.ToLower(e.Name + "_" + strings.Join(set, "_") + "_uq")
			parts := make([]string, 0, len(set))
			for _, p := range set {
				parts = append(parts, Ident(p))
			}
			fmt.Fprintf(&phaseA, "create unique index if not exists %s on %s(%s);\n",
				Ident(idxName), TableFQN(e), strings.Join(parts, ", "))
		}

		// FK собираем, исполняем второй фазой — когда все таблицы уже есть
		for _, f := range e.Fields {
			if !f.IsRelation() || f.IsList() {
				continue
			}
			target, ok := dsl.ResolveTarget(entities, e, f.RefTarget)
			if !ok {
				return nil, fmt.Errorf("%s.%s: ref target %q not found", fqnKey, f.Name, f.RefTarget)
			}
			te := entities[target]
			from, to := f.From(), f.To()
			if len(from) != len(to) {
				return nil, fmt.Errorf("%s.%s: from/to arity mismatch", fqnKey, f.Name)
			}
			fromIdents := make([]string, len(from))
			toIdents := make([]string, len(to))
			for i := range from {
				fromIdents[i] = Ident(from[i])
				toIdents[i] = Ident(to[i])
			}
			fks = append(fks, fkStmt{
				table:    TableFQN(e),
				name:     strings.ToLower(e.Name + "_" + f.Name + "_fk"),
				cols:     fromIdents,
				refCols:  toIdents,
				refTable: TableFQN(te),
			})
		}
	}

	out["000_schemas_and_tables"] = phaseA.String()

	// --- Phase B: foreign keys ---
	var phaseB strings.Builder
	for _, fk := range fks {
		fmt.Fprintf(&phaseB,
			"alter table %s add constraint %s foreign key (%s) references %s(%s);\n",
			fk.table, fk.name,
			strings.Join(fk.cols, ", "),
			fk.refTable, strings.Join(fk.refCols, ", "),
		)
	}
	if phaseB.Len() > 0 {
		out["200_foreign_keys"] = phaseB.String()
	}

	return out, nil
}
