// Package graph строит граф зависимостей между сущностями по метаданным
// ссылок и выдаёт порядок создания записей.
package graph

import (
	"sort"

	"sevalka/internal/dsl"
)

// Node — узел графа зависимостей одной сущности
type Node struct {
	// DependsOn — сущности, которые должны существовать раньше этой
	DependsOn map[string]struct{}
	// ReferencedBy — обратный набор: кто зависит от этой сущности
	ReferencedBy map[string]struct{}
}

// Graph — граф зависимостей по FQN сущностей. После Build не мутируется.
type Graph struct {
	Nodes map[string]*Node

	// порядок добавления узлов (отсортированные FQN) — даёт
	// детерминированный обход и fallback-порядок при циклах
	order []string
}

// Build строит граф по загруженным схемам. Ребро A -> B добавляется только
// для обязательной одиночной ссылки: опциональные и массивные ссылки не
// блокируют создание и в порядок не входят. Ссылка сущности на саму себя
// ребром не становится.
func Build(entities map[string]*dsl.Entity) *Graph {
	g := &Graph{Nodes: make(map[string]*Node, len(entities))}

	g.order = make([]string, 0, len(entities))
	for fqn := range entities {
		g.order = append(g.order, fqn)
	}
	sort.Strings(g.order)

	for _, fqn := range g.order {
		g.Nodes[fqn] = &Node{
			DependsOn:    make(map[string]struct{}),
			ReferencedBy: make(map[string]struct{}),
		}
	}

	for _, fqn := range g.order {
		e := entities[fqn]
		for _, f := range e.Fields {
			if !f.IsRelation() || f.IsList() || !f.IsRequired() {
				continue
			}
			target, ok := dsl.ResolveTarget(entities, e, f.RefTarget)
			if !ok || target == fqn {
				// неразрешимая цель отсеивается линтером, self-ссылка
				// порядок не задаёт
				continue
			}
			g.Nodes[fqn].DependsOn[target] = struct{}{}
			g.Nodes[target].ReferencedBy[fqn] = struct{}{}
		}
	}

	return g
}

// Names возвращает список всех FQN в порядке добавления узлов
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
