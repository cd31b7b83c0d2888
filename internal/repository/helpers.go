package repository

import "strings"

// joinIDs converts a question ID slice to the comma-separated form stored in
// TEXT columns
func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

// splitIDs parses a stored comma-separated ID string, preserving order
func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
