package dsl

import (
	"fmt"
	"sort"
	"strings"
)

type SchemaIssue struct {
	Entity  string `json:"entity"` // FQN: module.Entity
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Lint проверяет базовые противоречия в загруженных схемах.
// Любая найденная проблема блокирует прогон: с кривой схемой
// генератор только наплодит мусорных отказов.
func Lint(entities map[string]*Entity) []SchemaIssue {
	var issues []SchemaIssue

	fqns := make([]string, 0, len(entities))
	for fqn := range entities {
		fqns = append(fqns, fqn)
	}
	sort.Strings(fqns)

	for _, fqn := range fqns {
		e := entities[fqn]
		fieldNames := make(map[string]struct{}, len(e.Fields))
		for _, f := range e.Fields {
			fieldNames[strings.ToLower(f.Name)] = struct{}{}
		}

		for _, f := range e.Fields {
			if !f.IsRelation() {
				continue
			}

			if strings.TrimSpace(f.RefTarget) == "" {
				issues = append(issues, SchemaIssue{
					Entity:  fqn,
					Field:   f.Name,
					Code:    "ref_target_empty",
					Message: "ref field has empty target",
				})
				continue
			}

			if _, ok := ResolveTarget(entities, e, f.RefTarget); !ok {
				issues = append(issues, SchemaIssue{
					Entity:  fqn,
					Field:   f.Name,
					Code:    "ref_target_unknown",
					Message: fmt.Sprintf("ref target %q cannot be resolved", f.RefTarget),
				})
				continue
			}

			// from= и to= должны быть одной длины
			if len(f.From()) != len(f.To()) {
				issues = append(issues, SchemaIssue{
					Entity:  fqn,
					Field:   f.Name,
					Code:    "ref_key_arity_mismatch",
					Message: fmt.Sprintf("from= lists %d columns, to= lists %d", len(f.From()), len(f.To())),
				})
			}

			// явные from-колонки должны существовать в сущности
			if len(f.FromFields) > 0 {
				for _, col := range f.FromFields {
					if _, ok := fieldNames[strings.ToLower(col)]; !ok {
						issues = append(issues, SchemaIssue{
							Entity:  fqn,
							Field:   f.Name,
							Code:    "ref_from_unknown_column",
							Message: fmt.Sprintf("from= names unknown column %q", col),
						})
					}
				}
			}
		}
	}
	return issues
}
