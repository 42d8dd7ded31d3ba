package dsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDSL = `# тестовая схема
module core

entity User:
  email: string required unique
  name: string required
  age: int
  manager: ref[User] from=manager_id to=id
  manager_id: string

entity Project:
  code: string required pk
  title: string
  owner: ref[core.User] required
  tags: array[string]
  status: enum[draft, active, done] required
  constraints:
    unique(code, title)

module billing

entity Invoice:
  number: string required unique
  project: ref[core.Project] required to=code
  amount: float required
`

func writeDSL(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.dsl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir
}

func TestLoadAllEntities(t *testing.T) {
	entities, err := LoadAllEntities(writeDSL(t, sampleDSL))
	require.NoError(t, err)
	require.Len(t, entities, 3)

	user := entities["core.User"]
	require.NotNil(t, user)
	assert.Equal(t, "core", user.Module)
	require.Len(t, user.Fields, 5)

	email := user.Fields[0]
	assert.Equal(t, "string", email.Type)
	assert.True(t, email.IsRequired())
	assert.True(t, email.IsUnique())
	assert.False(t, email.IsIdentifier())

	manager := user.Fields[3]
	assert.True(t, manager.IsRelation())
	assert.False(t, manager.IsList())
	assert.Equal(t, "User", manager.RefTarget)
	assert.Equal(t, []string{"manager_id"}, manager.From())
	assert.Equal(t, []string{"id"}, manager.To())

	project := entities["core.Project"]
	require.NotNil(t, project)
	owner := project.Fields[2]
	assert.True(t, owner.IsRelation())
	assert.True(t, owner.IsRequired())
	assert.Equal(t, "core.User", owner.RefTarget)
	// дефолты: from = само поле, to = id
	assert.Equal(t, []string{"owner"}, owner.From())
	assert.Equal(t, []string{"id"}, owner.To())

	tags := project.Fields[3]
	assert.True(t, tags.IsList())
	assert.False(t, tags.IsRelation())

	status := project.Fields[4]
	assert.Equal(t, "enum", status.Type)
	assert.Equal(t, []string{"draft", "active", "done"}, status.Enum)

	require.Len(t, project.Constraints.Unique, 1)
	assert.Equal(t, []string{"code", "title"}, project.Constraints.Unique[0])

	invoice := entities["billing.Invoice"]
	require.NotNil(t, invoice)
	ref := invoice.Fields[1]
	assert.Equal(t, []string{"project"}, ref.From())
	assert.Equal(t, []string{"code"}, ref.To())
}

func TestLoadAllEntitiesDuplicate(t *testing.T) {
	_, err := LoadAllEntities(writeDSL(t, "module core\n\nentity A:\n  x: string\n\nentity A:\n  y: string\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entity")
}

func TestLoadAllEntitiesNoModule(t *testing.T) {
	_, err := LoadAllEntities(writeDSL(t, "entity A:\n  x: string\n"))
	require.Error(t, err)
}

func TestResolveTarget(t *testing.T) {
	entities, err := LoadAllEntities(writeDSL(t, sampleDSL))
	require.NoError(t, err)

	user := entities["core.User"]
	invoice := entities["billing.Invoice"]

	// короткое имя в своём модуле
	fqn, ok := ResolveTarget(entities, user, "Project")
	require.True(t, ok)
	assert.Equal(t, "core.Project", fqn)

	// короткое имя из чужого модуля — уникально среди всех
	fqn, ok = ResolveTarget(entities, invoice, "User")
	require.True(t, ok)
	assert.Equal(t, "core.User", fqn)

	// полное имя
	fqn, ok = ResolveTarget(entities, invoice, "core.Project")
	require.True(t, ok)
	assert.Equal(t, "core.Project", fqn)

	_, ok = ResolveTarget(entities, user, "Nothing")
	assert.False(t, ok)
}

func TestIsSelfRelation(t *testing.T) {
	entities, err := LoadAllEntities(writeDSL(t, sampleDSL))
	require.NoError(t, err)

	user := entities["core.User"]
	assert.True(t, IsSelfRelation(entities, user, user.Fields[3]))

	project := entities["core.Project"]
	assert.False(t, IsSelfRelation(entities, project, project.Fields[2]))
}

func TestLint(t *testing.T) {
	entities, err := LoadAllEntities(writeDSL(t, sampleDSL))
	require.NoError(t, err)
	assert.Empty(t, Lint(entities))

	bad, err := LoadAllEntities(writeDSL(t, `module core

entity A:
  other: ref[Missing] required
  pair: ref[A] from=x to=[id,code]
`))
	require.NoError(t, err)
	issues := Lint(bad)
	require.Len(t, issues, 3)
	codes := []string{issues[0].Code, issues[1].Code, issues[2].Code}
	assert.Contains(t, codes, "ref_target_unknown")
	assert.Contains(t, codes, "ref_key_arity_mismatch")
	assert.Contains(t, codes, "ref_from_unknown_column")
}
