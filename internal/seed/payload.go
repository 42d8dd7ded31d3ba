package seed

import (
	"sevalka/internal/dsl"
	"sevalka/internal/store"
)

// typeState — состояние прогона для одной сущности
type typeState struct {
	Entity *dsl.Entity
	// Records — успешно созданные записи в порядке создания
	Records []*store.Record
	// Created — базовая запись уже есть
	Created bool
}

// buildPayload собирает данные одной попытки создания: скаляры через
// Synthesizer, одиночные ссылки — connect-инструкцией на ПЕРВУЮ созданную
// запись цели. Self-ссылки здесь всегда пропускаются (их закрывает
// отдельная фаза). Возвращает payload и список целей, у которых ещё нет
// записей для обязательных ссылок.
func buildPayload(e *dsl.Entity, entities map[string]*dsl.Entity, states map[string]*typeState, syn *Synthesizer) (store.Payload, []string) {
	p := store.Payload{Values: map[string]any{}}
	var waiting []string

	// FK-колонки одиночных ссылок не синтезируем — их заполняет connect
	fkCols := map[string]struct{}{}
	for _, f := range e.Fields {
		if f.IsRelation() && !f.IsList() {
			for _, col := range f.From() {
				fkCols[col] = struct{}{}
			}
		}
	}

	for _, f := range e.Fields {
		if f.IsRelation() {
			if f.IsList() || dsl.IsSelfRelation(entities, e, f) {
				continue
			}
			target, ok := dsl.ResolveTarget(entities, e, f.RefTarget)
			if !ok {
				continue
			}
			st := states[target]
			if st == nil || !st.Created {
				// подключать нечего; обязательная ссылка остаётся незаполненной,
				// и хранилище откажет — это и есть сигнал «ещё рано»
				if f.IsRequired() {
					waiting = append(waiting, target)
				}
				continue
			}
			first := st.Records[0]
			keys := make(map[string]any, len(f.To()))
			for _, to := range f.To() {
				v, _ := first.Get(to)
				keys[to] = v
			}
			p.Connects = append(p.Connects, store.Connect{Field: f.Name, Target: target, Keys: keys})
			continue
		}

		if f.IsReadOnly() {
			continue
		}
		if _, isFK := fkCols[f.Name]; isFK {
			continue
		}
		if v, ok := syn.Value(f); ok {
			p.Values[f.Name] = v
		}
	}

	return p, waiting
}

// selfFields возвращает одиночные self-ссылки сущности
func selfFields(e *dsl.Entity, entities map[string]*dsl.Entity) []dsl.Field {
	var out []dsl.Field
	for _, f := range e.Fields {
		if f.IsRelation() && !f.IsList() && dsl.IsSelfRelation(entities, e, f) {
			out = append(out, f)
		}
	}
	return out
}
