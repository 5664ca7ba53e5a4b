package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// orderBy builds an ORDER BY clause from orderings whose fields are in allowed.
// Unknown fields are ignored so that user input never reaches the query.
func orderBy(orderings []core.DBOrdering, allowed map[string]bool, fallback core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if allowed[ord.Field] {
			clauses = append(clauses, quoteOrdering(ord))
		}
	}
	if len(clauses) == 0 {
		clauses = append(clauses, quoteOrdering(fallback))
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

func quoteOrdering(ord core.DBOrdering) string {
	return core.DBOrdering{Field: pq.QuoteIdentifier(ord.Field), Ascending: ord.Ascending}.String()
}
