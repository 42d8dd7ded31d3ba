package main

import (
	"context"
	"fmt"
	"log"

	"sevalka/internal/api"
	"sevalka/internal/config"
	"sevalka/internal/dsl"
	"sevalka/internal/seed"
)

func main() {
	cfg := config.LoadWithPath("sevalka.json")

	if cfg.Serve {
		// HTTP-режим: посев по запросу
		entities, err := dsl.LoadAllEntities(cfg.DSLDir)
		if err != nil {
			log.Fatalf("Ошибка загрузки DSL: %v", err)
		}
		fmt.Printf("Загружено сущностей: %d\n", len(entities))
		fmt.Printf("Стартуем сервер Sevalka на :%s...\n", cfg.Port)
		if err := api.RunServer(":"+cfg.Port, cfg, entities); err != nil {
			log.Fatalf("Ошибка сервера: %v", err)
		}
		return
	}

	// one-shot: один прогон и выход
	rep, err := seed.Generate(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Ошибка посева: %v", err)
	}
	fmt.Println(rep.Summary())
	if !rep.Complete() {
		// частичный результат — не ошибка, но молчать о нём не будем
		fmt.Printf("Без записей остались: %v\n", rep.Unmaterialized)
	}
}
