package seed

import (
	"context"
	"log"
	"sort"

	"sevalka/internal/store"
)

// ResolveSelfRelations закрывает self-ссылки стратегией «второй записи»:
// после основного цикла для каждой сущности с одиночной ссылкой на саму
// себя создаётся вторая запись, подключённая к первой. Первая запись
// остаётся без self-ссылки. Отказы логируются и не прерывают обработку
// остальных сущностей.
func (m *Materializer) ResolveSelfRelations(ctx context.Context, states map[string]*typeState, rep *Report) {
	fqns := make([]string, 0, len(states))
	for fqn := range states {
		fqns = append(fqns, fqn)
	}
	sort.Strings(fqns)

	for _, fqn := range fqns {
		st := states[fqn]
		fields := selfFields(st.Entity, m.Entities)
		if len(fields) == 0 {
			continue
		}

		// базовая запись обязана существовать — без неё подключаться не к чему
		if !st.Created && !m.attempt(ctx, 0, fqn, st, states, rep) {
			continue
		}
		first := st.Records[0]

		payload, _ := buildPayload(st.Entity, m.Entities, states, m.Syn)
		for _, f := range fields {
			keys := make(map[string]any, len(f.To()))
			for _, to := range f.To() {
				v, _ := first.Get(to)
				keys[to] = v
			}
			payload.Connects = append(payload.Connects, store.Connect{
				Field:  f.Name,
				Target: fqn,
				Keys:   keys,
			})
		}

		rec, err := m.Store.Create(ctx, fqn, payload)
		if err != nil {
			rep.Deferred = append(rep.Deferred, Deferral{Entity: fqn, Reason: err.Error()})
			log.Printf("посев: self-ссылка %s не закрыта (%v)", fqn, err)
			continue
		}
		st.Records = append(st.Records, rec)
		rep.Created[fqn]++
		log.Printf("посев: self-ссылка %s закрыта, запись %s -> %s", fqn, rec.ID, first.ID)
	}
}
