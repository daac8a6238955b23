package services

import "fmt"

// MoveBefore removes moved from ids and reinserts it immediately before
// target's position in the remaining sequence. The input is not modified.
// Moving an id before itself returns the sequence unchanged.
func MoveBefore(ids []uint, moved, target uint) ([]uint, error) {
	result := make([]uint, 0, len(ids))
	found := false
	for _, id := range ids {
		if id == moved {
			found = true
			continue
		}
		result = append(result, id)
	}
	if !found {
		return nil, fmt.Errorf("task %d is not in the sequence", moved)
	}
	if moved == target {
		return append([]uint(nil), ids...), nil
	}

	for i, id := range result {
		if id == target {
			result = append(result, 0)
			copy(result[i+1:], result[i:])
			result[i] = moved
			return result, nil
		}
	}
	return nil, fmt.Errorf("task %d is not in the sequence", target)
}
