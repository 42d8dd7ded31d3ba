// Package seed — движок генерации демо-данных: многопроходное создание
// записей в порядке зависимостей с повторными попытками и развязкой
// self-ссылок.
package seed

import (
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"sevalka/internal/dsl"
	"sevalka/internal/reference"
)

// Synthesizer подбирает placeholder-значение для одного скалярного поля.
// Значения обычного текста детерминированы по имени поля; уникальный текст
// каждый раз получает свежий токен.
type Synthesizer struct {
	enums   map[string]reference.EnumDirectory
	entropy io.Reader
	now     func() time.Time
}

func NewSynthesizer(enums map[string]reference.EnumDirectory) *Synthesizer {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Synthesizer{
		enums:   enums,
		entropy: ulid.Monotonic(src, 0),
		now:     time.Now,
	}
}

func (s *Synthesizer) token() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

// placeholder — детерминированная заглушка, выводимая из имени поля
func placeholder(name string) string { return name + "_demo" }

// Value возвращает значение поля и признак «поле задаём». Идентификаторы
// не задаём (их назначает хранилище), опциональные неизвестные типы
// пропускаем.
func (s *Synthesizer) Value(f dsl.Field) (any, bool) {
	// массивы скаляров всегда пустые, независимо от типа элемента
	if f.IsList() {
		return []any{}, true
	}

	switch strings.ToLower(f.Type) {
	case "string":
		if f.IsIdentifier() {
			return nil, false
		}
		if f.IsUnique() {
			return s.token(), true
		}
		return placeholder(f.Name), true
	case "int":
		return int64(1), true
	case "float":
		return 1.5, true
	case "bool":
		return false, true
	case "date":
		return s.now().UTC().Format("2006-01-02"), true
	case "datetime":
		return s.now().UTC().Format(time.RFC3339), true
	case "json":
		return map[string]any{"demo": true}, true
	case "enum":
		if len(f.Enum) > 0 {
			return f.Enum[0], true
		}
		// inline-значений нет — пробуем справочник (catalog=имя)
		if dir, ok := s.enums[f.Options["catalog"]]; ok {
			if code := dir.FirstCode(); code != "" {
				return code, true
			}
		}
	}

	// неизвестный тип: обязательное поле получает заглушку, остальные — пропуск
	if f.IsRequired() {
		return placeholder(f.Name), true
	}
	return nil, false
}
