package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevalka/internal/dsl"
	"sevalka/internal/store"
)

func TestSelfRelationSecondRecord(t *testing.T) {
	entities := entityMap(
		entity("core", "Category",
			field("name", "string", map[string]string{"required": "true"}),
			refField("parent", "Category", false),
		),
	)
	st := store.NewMemory(entities)

	rep := RunAll(context.Background(), st, entities, nil, 0)

	require.True(t, rep.Complete())
	// основная фаза дала одну запись, резолвер — вторую
	require.Equal(t, 2, st.Len("core.Category"))
	assert.Equal(t, 2, rep.Created["core.Category"])

	recs := st.Records("core.Category")
	var linked, base *store.Record
	for _, r := range recs {
		if _, ok := r.Data["parent"]; ok {
			linked = r
		} else {
			base = r
		}
	}
	// ровно одна запись ссылается, и ссылается на первую созданную
	require.NotNil(t, linked, "second record must carry the self reference")
	require.NotNil(t, base, "first record must stay unlinked")
	assert.Equal(t, base.ID, linked.Data["parent"])
}

func TestSelfRelationWithExplicitFK(t *testing.T) {
	entities := entityMap(
		entity("core", "Employee",
			field("name", "string", map[string]string{"required": "true"}),
			field("manager_id", "string", nil),
			dsl.Field{Name: "manager", Type: "ref", RefTarget: "Employee",
				FromFields: []string{"manager_id"},
				Options:    map[string]string{}},
		),
	)
	st := store.NewMemory(entities)

	rep := RunAll(context.Background(), st, entities, nil, 0)

	require.True(t, rep.Complete())
	require.Equal(t, 2, st.Len("core.Employee"))

	recs := st.Records("core.Employee")
	var linked, base *store.Record
	for _, r := range recs {
		if _, ok := r.Data["manager_id"]; ok {
			linked = r
		} else {
			base = r
		}
	}
	require.NotNil(t, linked)
	require.NotNil(t, base)
	assert.Equal(t, base.ID, linked.Data["manager_id"])
}

func TestSelfRelationSkippedInMainPass(t *testing.T) {
	entities := entityMap(
		entity("core", "Category",
			field("name", "string", map[string]string{"required": "true"}),
			refField("parent", "Category", false),
		),
	)
	st := store.NewMemory(entities)

	m := &Materializer{Store: st, Entities: entities, Syn: NewSynthesizer(nil)}
	rep := NewReport()
	states := m.Run(context.Background(), []string{"core.Category"}, rep)

	// без резолвера self-ссылка не трогается вовсе
	require.Equal(t, 1, st.Len("core.Category"))
	rec := st.Records("core.Category")[0]
	_, ok := rec.Data["parent"]
	assert.False(t, ok)
	assert.True(t, states["core.Category"].Created)
}
