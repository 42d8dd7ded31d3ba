package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevalka/internal/dsl"
	"sevalka/internal/store"
)

func entity(module, name string, fields ...dsl.Field) *dsl.Entity {
	return &dsl.Entity{Module: module, Name: name, Fields: fields}
}

func refField(name, target string, required bool) dsl.Field {
	opts := map[string]string{}
	if required {
		opts["required"] = "true"
	}
	return dsl.Field{Name: name, Type: "ref", RefTarget: target, Options: opts}
}

func entityMap(ents ...*dsl.Entity) map[string]*dsl.Entity {
	m := make(map[string]*dsl.Entity, len(ents))
	for _, e := range ents {
		m[e.FQN()] = e
	}
	return m
}

func TestRunAllTwoTypeChain(t *testing.T) {
	entities := entityMap(
		entity("core", "User",
			field("email", "string", map[string]string{"required": "true", "unique": "true"}),
		),
		entity("core", "Project",
			field("title", "string", map[string]string{"required": "true"}),
			refField("owner", "User", true),
		),
	)
	st := store.NewMemory(entities)

	rep := RunAll(context.Background(), st, entities, nil, 0)

	require.True(t, rep.Complete())
	// топологический порядок: User раньше Project, всё за один проход
	assert.Equal(t, 1, rep.Passes)
	assert.Empty(t, rep.Deferred)
	assert.Equal(t, 1, st.Len("core.User"))
	assert.Equal(t, 1, st.Len("core.Project"))

	user := st.Records("core.User")[0]
	project := st.Records("core.Project")[0]
	// FK заполнен ключом первой созданной записи цели
	assert.Equal(t, user.ID, project.Data["owner"])
}

// chainEntities строит цепочку E1 <- E2 <- ... <- En (Ei требует Ei-1)
func chainEntities(n int) map[string]*dsl.Entity {
	ents := make([]*dsl.Entity, 0, n)
	for i := 1; i <= n; i++ {
		e := entity("chain", fmt.Sprintf("E%d", i))
		if i > 1 {
			e.Fields = append(e.Fields, refField("prev", fmt.Sprintf("E%d", i-1), true))
		}
		ents = append(ents, e)
	}
	return entityMap(ents...)
}

// worstOrder — обратный топологический порядок: самая зависимая сущность первой
func worstOrder(n int) []string {
	out := make([]string, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, fmt.Sprintf("chain.E%d", i))
	}
	return out
}

func TestRunDepthEqualsPasses(t *testing.T) {
	entities := chainEntities(5)
	m := &Materializer{
		Store:    store.NewMemory(entities),
		Entities: entities,
		Syn:      NewSynthesizer(nil),
		Passes:   5,
	}

	// злонамеренный порядок: каждый проход продвигает цепочку ровно на одну сущность
	rep := NewReport()
	states := m.Run(context.Background(), worstOrder(5), rep)
	rep.finalize(states)

	assert.True(t, rep.Complete())
	assert.Equal(t, 5, rep.Passes)
}

func TestRunDepthExceedsPasses(t *testing.T) {
	entities := chainEntities(6)
	m := &Materializer{
		Store:    store.NewMemory(entities),
		Entities: entities,
		Syn:      NewSynthesizer(nil),
		Passes:   5,
	}

	rep := NewReport()
	states := m.Run(context.Background(), worstOrder(6), rep)
	rep.finalize(states)

	// лимит проходов исчерпан — самая глубокая сущность осталась без записи
	assert.False(t, rep.Complete())
	assert.Equal(t, []string{"chain.E6"}, rep.Unmaterialized)
	assert.Equal(t, 5, rep.Passes)
}

func TestRunAllCyclicPairTerminates(t *testing.T) {
	entities := entityMap(
		entity("a", "X", refField("y", "a.Y", true)),
		entity("a", "Y", refField("x", "a.X", true)),
	)
	st := store.NewMemory(entities)

	rep := RunAll(context.Background(), st, entities, nil, 5)

	// цикл: прогресса нет уже на первом проходе, выходим досрочно
	assert.Equal(t, 1, rep.Passes)
	assert.False(t, rep.Complete())
	assert.ElementsMatch(t, []string{"a.X", "a.Y"}, rep.Unmaterialized)
	assert.ElementsMatch(t, []string{"a.X", "a.Y"}, rep.Cyclic)
	assert.NotEmpty(t, rep.Deferred)
}

func TestRunAllOptionalRefDoesNotBlock(t *testing.T) {
	// опциональная ссылка не даёт ребра и не мешает созданию
	entities := entityMap(
		entity("core", "Note", refField("author", "Ghost", false)),
	)
	st := store.NewMemory(entities)

	rep := RunAll(context.Background(), st, entities, nil, 0)

	assert.True(t, rep.Complete())
	assert.Equal(t, 1, st.Len("core.Note"))
}

func TestRunAllConnectsByCustomKey(t *testing.T) {
	entities := entityMap(
		entity("core", "Country",
			field("code", "string", map[string]string{"required": "true", "unique": "true"}),
		),
		entity("core", "City",
			field("name", "string", map[string]string{"required": "true"}),
			dsl.Field{Name: "country", Type: "ref", RefTarget: "Country",
				ToFields: []string{"code"},
				Options:  map[string]string{"required": "true"}},
		),
	)
	st := store.NewMemory(entities)

	rep := RunAll(context.Background(), st, entities, nil, 0)
	require.True(t, rep.Complete())

	country := st.Records("core.Country")[0]
	city := st.Records("core.City")[0]
	assert.Equal(t, country.Data["code"], city.Data["country"])
}
