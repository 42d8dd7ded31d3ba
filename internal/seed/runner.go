package seed

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sevalka/internal/config"
	"sevalka/internal/dsl"
	"sevalka/internal/graph"
	"sevalka/internal/pg"
	"sevalka/internal/reference"
	"sevalka/internal/store"
)

// RunAll прогоняет весь конвейер против готового хранилища: граф, порядок,
// многопроходное создание, self-ссылки. Ошибок не возвращает — отказы
// отдельных записей живут в отчёте.
func RunAll(ctx context.Context, st store.Store, entities map[string]*dsl.Entity, enums map[string]reference.EnumDirectory, passes int) *Report {
	rep := NewReport()

	g := graph.Build(entities)
	ord := g.Order()
	if len(ord.Cyclic) > 0 {
		// цикл — не приговор: порядок best-effort, дальше спасают проходы
		log.Printf("посев: обнаружен цикл зависимостей: %s", strings.Join(ord.Cyclic, ", "))
		rep.Cyclic = ord.Cyclic
	}

	m := &Materializer{
		Store:    st,
		Entities: entities,
		Syn:      NewSynthesizer(enums),
		Passes:   passes,
	}
	states := m.Run(ctx, ord.Sequence, rep)
	m.ResolveSelfRelations(ctx, states, rep)

	rep.finalize(states)
	log.Printf("посев: %s", rep.Summary())
	return rep
}

// Generate — единая точка входа: загрузка схем (фатально при ошибке),
// открытие хранилища, прогон, гарантированное закрытие хранилища на любом
// исходе. Наружу выходят только ошибки схемы и закрытия хранилища.
func Generate(ctx context.Context, cfg config.Config) (rep *Report, err error) {
	entities, err := dsl.LoadAllEntities(cfg.DSLDir)
	if err != nil {
		return nil, fmt.Errorf("load DSL: %w", err)
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("load DSL: no entities in %s", cfg.DSLDir)
	}

	if issues := dsl.Lint(entities); len(issues) > 0 {
		msgs := make([]string, 0, len(issues))
		for _, it := range issues {
			msgs = append(msgs, fmt.Sprintf("%s.%s: %s", it.Entity, it.Field, it.Message))
		}
		return nil, fmt.Errorf("schema has blocking issues: %s", strings.Join(msgs, "; "))
	}

	enums, err := reference.LoadEnumCatalog(cfg.EnumsDir)
	if err != nil {
		return nil, fmt.Errorf("load enums: %w", err)
	}

	st, err := openStore(cfg, entities)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("store close: %w", cerr)
		}
	}()

	rep = RunAll(ctx, st, entities, enums, cfg.SeedPasses)
	return rep, nil
}

// openStore выбирает хранилище: пустой dbUrl — in-memory, иначе Postgres
// (с опциональным bootstrap'ом таблиц)
func openStore(cfg config.Config, entities map[string]*dsl.Entity) (store.Store, error) {
	if cfg.DBURL == "" {
		return store.NewMemory(entities), nil
	}

	db, err := pg.Open(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.AutoMigrate {
		ddl, err := pg.GenerateDDL(entities)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("generate DDL: %w", err)
		}
		if err := pg.ApplyDDL(db, ddl); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return store.NewPostgres(db, entities), nil
}
