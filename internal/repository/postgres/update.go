package postgres

import (
	"sort"
	"strconv"
)

// buildUpdate renders "UPDATE <table> SET ... WHERE id = $n" for the given
// columns. Columns outside allowedFields are rejected.
func buildUpdate(table string, allowedFields []string, id interface{}, updates map[string]interface{}) (string, []interface{}, error) {
	allowedFieldsSet := make(map[string]struct{}, len(allowedFields))
	for _, field := range allowedFields {
		allowedFieldsSet[field] = struct{}{}
	}

	columns := make([]string, 0, len(updates))
	for field := range updates {
		if _, ok := allowedFieldsSet[field]; !ok {
			return "", nil, ErrFieldsNotAllowedToUpdate
		}
		columns = append(columns, field)
	}
	sort.Strings(columns)

	query := "UPDATE " + table + " SET "
	args := []interface{}{}
	i := 1

	for _, column := range columns {
		query += (column + " = $" + strconv.Itoa(i) + ", ")
		args = append(args, updates[column])
		i++
	}

	query = query[:len(query)-2] + " WHERE id = $" + strconv.Itoa(i)
	args = append(args, id)

	return query, args, nil
}
