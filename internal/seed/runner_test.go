package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevalka/internal/config"
)

const runnerDSL = `module shop

entity Customer:
  email: string required unique
  name: string required

entity Category:
  title: string required
  parent: ref[Category]

entity Order:
  number: string required unique
  customer: ref[Customer] required
  placed_at: datetime required

entity OrderItem:
  order: ref[Order] required
  qty: int required
  price: float required
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.dsl"), []byte(content), 0o644))
	return dir
}

func TestGenerateInMemory(t *testing.T) {
	cfg := config.Config{
		DSLDir:     writeSchema(t, runnerDSL),
		SeedPasses: 5,
	}

	rep, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.True(t, rep.Complete())
	assert.Empty(t, rep.Cyclic)
	// DAG закрывается одним проходом
	assert.Equal(t, 1, rep.Passes)
	// Category self-ссылочная: базовая запись плюс вторая от резолвера
	assert.Equal(t, 2, rep.Created["shop.Category"])
	assert.Equal(t, 1, rep.Created["shop.Customer"])
	assert.Equal(t, 1, rep.Created["shop.Order"])
	assert.Equal(t, 1, rep.Created["shop.OrderItem"])
	assert.Equal(t, 5, rep.TotalCreated())
}

func TestGenerateBadSchemaDir(t *testing.T) {
	cfg := config.Config{DSLDir: filepath.Join(t.TempDir(), "missing")}

	_, err := Generate(context.Background(), cfg)
	require.Error(t, err)
}

func TestGenerateEmptySchema(t *testing.T) {
	cfg := config.Config{DSLDir: t.TempDir()}

	_, err := Generate(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entities")
}

func TestGenerateLintBlocks(t *testing.T) {
	cfg := config.Config{
		DSLDir: writeSchema(t, "module shop\n\nentity A:\n  other: ref[Missing] required\n"),
	}

	_, err := Generate(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocking issues")
}
