package handlers

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already in use")
)

// isDuplicateErr matches unique-constraint violations across the postgres
// driver and the sqlite driver used in tests.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// applySearchSort adds a case-insensitive substring filter over the given
// columns plus whitelisted ordering, defaulting to name ascending.
func applySearchSort(q *gorm.DB, term string, columns []string, sortBy, order string, sortable map[string]bool) *gorm.DB {
	if term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
			args[i] = pattern
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}

	if !sortable[sortBy] {
		sortBy = "name"
	}
	if strings.EqualFold(order, "desc") {
		order = "DESC"
	} else {
		order = "ASC"
	}
	return q.Order(fmt.Sprintf("%s %s", sortBy, order))
}
