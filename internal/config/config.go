package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port     string `json:"port"`
	DSLDir   string `json:"dslDir"`
	EnumsDir string `json:"enumsDir"`
	DBURL    string `json:"dbUrl"` // пусто = in-memory хранилище

	AutoMigrate bool `json:"autoMigrate"`
	SeedPasses  int  `json:"seedPasses"`
	Serve       bool `json:"serve"`
}

func def() Config {
	return Config{
		Port:        "8080",
		DSLDir:      "dsl",
		EnumsDir:    "reference/enums",
		DBURL:       "",
		AutoMigrate: false,
		SeedPasses:  5,
		Serve:       false,
	}
}

func loadJSON(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

func getenvInt(k string, fallback int) int {
	if v, ok := os.LookupEnv(k); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// LoadWithPath читает JSON по указанному пути, потом применяет ENV и флаги.
func LoadWithPath(jsonPath string) Config {
	cfg := def()

	// JSON (если файл существует)
	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		if c2, err := loadJSON(jsonPath); err == nil {
			cfg = c2
		}
	}

	// ENV overrides
	cfg.Port = getenv("SEVALKA_PORT", cfg.Port)
	cfg.DSLDir = getenv("SEVALKA_DSL_DIR", cfg.DSLDir)
	cfg.EnumsDir = getenv("SEVALKA_ENUMS_DIR", cfg.EnumsDir)
	cfg.DBURL = getenv("SEVALKA_DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("SEVALKA_AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.SeedPasses = getenvInt("SEVALKA_SEED_PASSES", cfg.SeedPasses)
	cfg.Serve = getenvBool("SEVALKA_SERVE", cfg.Serve)

	// Flags overrides
	configPath := flag.String("config", jsonPath, "Path to config JSON")
	port := flag.String("port", cfg.Port, "HTTP port (serve mode)")
	dsl := flag.String("dsl", cfg.DSLDir, "Path to DSL directory")
	enums := flag.String("enums", cfg.EnumsDir, "Path to enums directory")
	db := flag.String("db", cfg.DBURL, "Postgres URL (empty = in-memory)")
	auto := flag.Bool("auto-migrate", cfg.AutoMigrate, "Bootstrap tables before seeding")
	passes := flag.Int("passes", cfg.SeedPasses, "Max seeding passes")
	serve := flag.Bool("serve", cfg.Serve, "Run as HTTP service instead of one-shot")

	flag.Parse()

	// Если через флаг передали другой конфиг — перечитаем
	if *configPath != jsonPath {
		return LoadWithPath(*configPath)
	}

	cfg.Port = strings.TrimSpace(*port)
	cfg.DSLDir = strings.TrimSpace(*dsl)
	cfg.EnumsDir = strings.TrimSpace(*enums)
	cfg.DBURL = strings.TrimSpace(*db)
	cfg.AutoMigrate = *auto
	if *passes > 0 {
		cfg.SeedPasses = *passes
	}
	cfg.Serve = *serve

	return cfg
}
