package ecs

// Query returns every entity, in creation order, that carries all required kinds and
// none of the excluded kinds. An empty required list matches every entity.
func (w *World) Query(required, excluded []Kind) []EntityID {
	var result []EntityID
	for _, id := range w.order {
		if w.matches(id, required, excluded) {
			result = append(result, id)
		}
	}
	return result
}

func (w *World) matches(id EntityID, required, excluded []Kind) bool {
	for _, k := range required {
		if !w.Has(id, k) {
			return false
		}
	}
	for _, k := range excluded {
		if w.Has(id, k) {
			return false
		}
	}
	return true
}
