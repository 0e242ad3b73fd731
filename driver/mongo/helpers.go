package mongo

import (
	"regexp"
	"strings"

	"github.com/leandroluk/golemfilter/core"
)

// toMongoLikePattern converts a SQL-like pattern into a MongoDB regex pattern.
//
// It replaces % with .* (wildcard for multiple characters) and
// _ with . (wildcard for a single character). The result is anchored, as
// LIKE matches the whole value.
//
// Example:
//
//	input := "%admin_"
//	regex := toMongoLikePattern(input)
//	// regex == "^.*admin.$"
func toMongoLikePattern(input string) string {
	var builder strings.Builder
	builder.WriteString("^")
	for _, r := range input {
		switch r {
		case '%':
			builder.WriteString(".*")
		case '_':
			builder.WriteString(".")
		default:
			builder.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	builder.WriteString("$")
	return builder.String()
}

// fieldPath returns the document path of a column. Columns of the primary
// collection are top level; columns of a joined collection live under the
// field its $lookup was stored in.
func fieldPath(q *core.Query, collection string, fieldName string) string {
	entityList := q.Entities()
	if collection == "" || (len(entityList) > 0 && entityList[0].Collection == collection) {
		return fieldName
	}
	return collection + "." + fieldName
}
