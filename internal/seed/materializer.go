package seed

import (
	"context"
	"log"

	"sevalka/internal/dsl"
	"sevalka/internal/store"
)

// DefaultPasses — сколько полных проходов делаем, прежде чем сдаться
const DefaultPasses = 5

// Materializer создаёт по одной базовой записи на сущность, проходя их в
// топологическом порядке. Отказ хранилища — не ошибка, а «зависимость ещё
// не готова»: сущность откладывается до следующего прохода. Всё строго
// последовательно: каждая попытка читает текущие записи других сущностей.
type Materializer struct {
	Store    store.Store
	Entities map[string]*dsl.Entity
	Syn      *Synthesizer
	Passes   int
}

func (m *Materializer) passes() int {
	if m.Passes > 0 {
		return m.Passes
	}
	return DefaultPasses
}

// Run выполняет цикл проходов и возвращает состояние по сущностям
func (m *Materializer) Run(ctx context.Context, order []string, rep *Report) map[string]*typeState {
	states := make(map[string]*typeState, len(m.Entities))
	for fqn, e := range m.Entities {
		states[fqn] = &typeState{Entity: e}
	}

	total := m.passes()
	for pass := 1; pass <= total; pass++ {
		rep.Passes = pass
		log.Printf("посев: проход %d/%d", pass, total)

		progress := false
		remaining := 0
		for _, fqn := range order {
			st := states[fqn]
			if st.Created {
				continue
			}
			if m.attempt(ctx, pass, fqn, st, states, rep) {
				progress = true
			} else {
				remaining++
			}
		}

		if remaining == 0 {
			break
		}
		if !progress {
			// состояние не изменилось — следующий проход ничего не даст
			log.Printf("посев: проход %d без прогресса, останавливаемся", pass)
			break
		}
	}

	return states
}

// attempt — одна попытка создать базовую запись сущности
func (m *Materializer) attempt(ctx context.Context, pass int, fqn string, st *typeState, states map[string]*typeState, rep *Report) bool {
	payload, waiting := buildPayload(st.Entity, m.Entities, states, m.Syn)

	rec, err := m.Store.Create(ctx, fqn, payload)
	if err != nil {
		// отказ проглатываем: фиксируем в отчёте и повторим на следующем проходе
		rep.Deferred = append(rep.Deferred, Deferral{
			Entity:  fqn,
			Pass:    pass,
			Reason:  err.Error(),
			Waiting: waiting,
		})
		log.Printf("посев: %s отложена (%v)", fqn, err)
		return false
	}

	st.Records = append(st.Records, rec)
	st.Created = true
	rep.Created[fqn]++
	log.Printf("посев: создана запись %s id=%s", fqn, rec.ID)
	return true
}
