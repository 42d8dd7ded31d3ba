package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"sevalka/internal/config"
	"sevalka/internal/dsl"
	"sevalka/internal/seed"
)

type server struct {
	cfg      config.Config
	entities map[string]*dsl.Entity

	mu      sync.Mutex
	running bool
	last    *seed.Report
}

func newServer(cfg config.Config, entities map[string]*dsl.Entity) *server {
	return &server{cfg: cfg, entities: entities}
}

type seedReq struct {
	Passes int `json:"passes"` // 0 = из конфига
}

// POST /api/seed — один прогон посева; параллельные прогоны не пускаем
func (s *server) seedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req seedReq
		_ = c.ShouldBindJSON(&req) // тело опционально

		s.mu.Lock()
		if s.running {
			s.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "seed run already in progress"})
			return
		}
		s.running = true
		s.mu.Unlock()

		cfg := s.cfg
		if req.Passes > 0 {
			cfg.SeedPasses = req.Passes
		}

		rep, err := seed.Generate(c.Request.Context(), cfg)

		s.mu.Lock()
		s.running = false
		if rep != nil {
			s.last = rep
		}
		s.mu.Unlock()

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":      rep.Complete(),
			"summary": rep.Summary(),
			"report":  rep,
		})
	}
}

// GET /api/report — последний отчёт
func (s *server) reportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		last := s.last
		s.mu.Unlock()

		if last == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no seed run yet"})
			return
		}
		c.JSON(http.StatusOK, last)
	}
}

type metaEntityItem struct {
	Module string `json:"module"`
	Entity string `json:"entity"`
	Fields int    `json:"fields"`
}

// GET /api/meta — загруженные сущности
func (s *server) metaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]metaEntityItem, 0, len(s.entities))
		for _, e := range s.entities {
			out = append(out, metaEntityItem{Module: e.Module, Entity: e.Name, Fields: len(e.Fields)})
		}
		c.JSON(http.StatusOK, out)
	}
}
