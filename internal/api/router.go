// api/router.go
package api

import (
	"github.com/gin-gonic/gin"

	"sevalka/internal/config"
	"sevalka/internal/dsl"
)

// RunServer поднимает HTTP-режим: запуск посева по запросу и просмотр
// последнего отчёта. Схемы загружаются один раз на старте.
func RunServer(addr string, cfg config.Config, entities map[string]*dsl.Entity) error {
	srv := newServer(cfg, entities)

	r := gin.Default()
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/seed", srv.seedHandler())
		apiGroup.GET("/report", srv.reportHandler())
		apiGroup.GET("/meta", srv.metaHandler())
	}

	return r.Run(addr)
}
