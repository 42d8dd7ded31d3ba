package seed

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Deferral — одна отложенная попытка создания
type Deferral struct {
	Entity string `json:"entity"`
	// Pass — номер прохода; 0 означает фазу self-ссылок
	Pass    int      `json:"pass"`
	Reason  string   `json:"reason"`
	Waiting []string `json:"waiting,omitempty"` // цели без записей на момент попытки
}

// Report — итог одного прогона. Недосозданные сущности — не ошибка,
// но вызывающий может проверить Complete().
type Report struct {
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Passes         int            `json:"passes"`
	Created        map[string]int `json:"created"`
	Deferred       []Deferral     `json:"deferred,omitempty"`
	Cyclic         []string       `json:"cyclic,omitempty"`
	Unmaterialized []string       `json:"unmaterialized,omitempty"`
}

func NewReport() *Report {
	return &Report{
		StartedAt: time.Now().UTC(),
		Created:   make(map[string]int),
	}
}

// Complete — у каждой сущности есть хотя бы одна запись
func (r *Report) Complete() bool { return len(r.Unmaterialized) == 0 }

// TotalCreated — сколько записей создано за прогон
func (r *Report) TotalCreated() int {
	total := 0
	for _, n := range r.Created {
		total += n
	}
	return total
}

// Summary — однострочный итог для лога
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "создано записей: %d (сущностей: %d, проходов: %d)",
		r.TotalCreated(), len(r.Created), r.Passes)
	if len(r.Cyclic) > 0 {
		fmt.Fprintf(&sb, ", циклы: %s", strings.Join(r.Cyclic, ", "))
	}
	if len(r.Unmaterialized) > 0 {
		fmt.Fprintf(&sb, ", без записей: %s", strings.Join(r.Unmaterialized, ", "))
	}
	return sb.String()
}

// finalize фиксирует сущности, оставшиеся без записей
func (r *Report) finalize(states map[string]*typeState) {
	var empty []string
	for fqn, st := range states {
		if !st.Created {
			empty = append(empty, fqn)
		}
	}
	sort.Strings(empty)
	r.Unmaterialized = empty
	r.FinishedAt = time.Now().UTC()
}
