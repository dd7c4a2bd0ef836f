package access

import apperrors "github.com/fieldops/field-console/pkg/util/errorutil"

// FilterByScope narrows rows to the principal's panchayath. Admins get rows
// unchanged; an empty scope gets nothing.
func FilterByScope[T any](p Principal, rows []T, key func(T) string) []T {
	if p.Scope.All {
		return rows
	}
	out := make([]T, 0, len(rows))
	if p.Scope.Empty() {
		return out
	}
	for _, row := range rows {
		if key(row) == p.Scope.PanchayathID {
			out = append(out, row)
		}
	}
	return out
}

// QueryScope returns the panchayath id a query must be restricted to. The
// second result is false when the principal sees every panchayath.
func QueryScope(p Principal) (string, bool) {
	if p.Scope.All {
		return "", false
	}
	return p.Scope.PanchayathID, true
}

// CheckScope guards mutations of panchayath-owned rows.
func CheckScope(p Principal, panchayathID string) error {
	if p.Scope.All {
		return nil
	}
	if p.Scope.PanchayathID != "" && p.Scope.PanchayathID == panchayathID {
		return nil
	}
	return apperrors.NewScopeViolation("panchayath outside principal scope", map[string]any{
		"principal_id":  p.ID,
		"principal":     string(p.Kind),
		"panchayath_id": panchayathID,
	})
}
