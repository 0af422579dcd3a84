package config

import "sort"

// detectCycle returns the sequences participating in an include cycle, or nil if no cycle exists.
func detectCycle(sequences []Sequence) []string {
	graph := make(map[string][]string, len(sequences))
	for _, seq := range sequences {
		var includes []string
		_ = walkSteps("", seq.Steps, func(_ string, step Step) error {
			if step.Include != "" {
				includes = append(includes, step.Include)
			}
			return nil
		})
		graph[seq.ID] = includes
	}

	visiting := make(map[string]bool, len(graph))
	visited := make(map[string]bool, len(graph))
	var stack []string

	var cycle []string
	var dfs func(string) bool
	dfs = func(node string) bool {
		visiting[node] = true
		stack = append(stack, node)

		for _, dep := range graph[node] {
			if visited[dep] {
				continue
			}
			if visiting[dep] {
				if idx := indexOf(stack, dep); idx >= 0 {
					cycle = append([]string{}, stack[idx:]...)
					cycle = append(cycle, dep)
				}
				return true
			}
			if dfs(dep) {
				return true
			}
		}

		visiting[node] = false
		visited[node] = true
		stack = stack[:len(stack)-1]
		return false
	}

	ids := make([]string, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if visited[id] {
			continue
		}
		if dfs(id) {
			break
		}
	}

	return cycle
}

func indexOf(slice []string, target string) int {
	for i, v := range slice {
		if v == target {
			return i
		}
	}
	return -1
}
