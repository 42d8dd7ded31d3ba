package dsl

import "strings"

// ResolveTarget возвращает FQN цели ссылки. Цель может быть задана полностью
// ("module.Entity") или коротким именем — тогда сначала пробуем модуль владельца,
// затем ищем единственное совпадение по имени среди всех модулей.
func ResolveTarget(entities map[string]*Entity, owner *Entity, target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}

	// полное имя — прямой ключ, затем регистронезависимо
	if strings.Contains(target, ".") {
		if _, ok := entities[target]; ok {
			return target, true
		}
		tl := strings.ToLower(target)
		for fqn := range entities {
			if strings.ToLower(fqn) == tl {
				return fqn, true
			}
		}
		return "", false
	}

	// короткое имя: модуль владельца в приоритете
	if owner != nil {
		local := owner.Module + "." + target
		if _, ok := entities[local]; ok {
			return local, true
		}
	}

	// иначе имя должно быть уникально среди всех модулей
	nl := strings.ToLower(target)
	found := ""
	for fqn := range entities {
		dot := strings.IndexByte(fqn, '.')
		if dot <= 0 {
			continue
		}
		if strings.ToLower(fqn[dot+1:]) == nl {
			if found != "" { // неуникально
				return "", false
			}
			found = fqn
		}
	}
	return found, found != ""
}

// IsSelfRelation — ссылка, чья цель совпадает с собственной сущностью
func IsSelfRelation(entities map[string]*Entity, owner *Entity, f Field) bool {
	if !f.IsRelation() {
		return false
	}
	target, ok := ResolveTarget(entities, owner, f.RefTarget)
	return ok && target == owner.FQN()
}
