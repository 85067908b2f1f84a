package assemble

import "unemigw/internal/student/models"

// priority scores a candidate record by its admission/enrollment flag
// combination. Active undergraduate enrollment beats pending admission beats
// partially known beats fully unknown; anything else is effectively never
// chosen over a scored candidate.
func priority(rec models.PublicRecord) int {
	a, p := rec.EsAdmision, rec.EsPregrado

	switch {
	case a != nil && !*a && p != nil && *p:
		return 1
	case a != nil && *a && p != nil && !*p:
		return 2
	case (a == nil) != (p == nil):
		return 3
	case a == nil && p == nil:
		return 4
	}
	return 99
}

// ChooseBest picks the candidate with the lowest priority score; ties keep
// the first-seen candidate. Returns nil for empty input.
func ChooseBest(items []models.PublicRecord) *models.PublicRecord {
	if len(items) == 0 {
		return nil
	}

	best := 0
	bestScore := priority(items[0])
	for i := 1; i < len(items); i++ {
		if score := priority(items[i]); score < bestScore {
			bestScore = score
			best = i
		}
	}
	return &items[best]
}
