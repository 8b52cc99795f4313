package sqlite

import "strings"

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func joinConditions(conditions []string) string {
	return strings.Join(conditions, " AND ")
}
