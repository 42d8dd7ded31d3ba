package graph

// Ordering — результат топологической сортировки
type Ordering struct {
	// Sequence — все сущности, каждая ровно один раз. Для ацикличного
	// графа это валидный топологический порядок; циклический остаток
	// дописан в конец в порядке добавления узлов.
	Sequence []string
	// Cyclic — сущности, застрявшие в циклах (пусто для DAG)
	Cyclic []string
}

// Order выполняет алгоритм Кана поверх копии степеней захода. Граф не
// мутируется. Цикл — не ошибка: оставшиеся узлы всё равно попадают в
// Sequence, а их список возвращается в Cyclic для отчёта.
func (g *Graph) Order() Ordering {
	indegree := make(map[string]int, len(g.Nodes))
	for fqn, n := range g.Nodes {
		indegree[fqn] = len(n.DependsOn)
	}

	// FIFO-очередь, затравка — узлы без зависимостей в порядке добавления
	queue := make([]string, 0, len(g.Nodes))
	for _, fqn := range g.order {
		if indegree[fqn] == 0 {
			queue = append(queue, fqn)
		}
	}

	seq := make([]string, 0, len(g.Nodes))
	done := make(map[string]struct{}, len(g.Nodes))

	for len(queue) > 0 {
		fqn := queue[0]
		queue = queue[1:]
		seq = append(seq, fqn)
		done[fqn] = struct{}{}

		// обходим зависимых в порядке добавления — очередь детерминирована
		refs := g.Nodes[fqn].ReferencedBy
		for _, dep := range g.order {
			if _, ok := refs[dep]; !ok {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	ord := Ordering{Sequence: seq}
	if len(seq) < len(g.Nodes) {
		// цикл: дописываем остаток, чтобы каждая сущность встретилась ровно раз
		for _, fqn := range g.order {
			if _, ok := done[fqn]; !ok {
				ord.Sequence = append(ord.Sequence, fqn)
				ord.Cyclic = append(ord.Cyclic, fqn)
			}
		}
	}
	return ord
}
