package model

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// DefaultPrimaryKey is used when a schema does not set one.
const DefaultPrimaryKey = "id"

// Schema maps a model name onto a table.
type Schema struct {
	Name       string
	Table      string
	PrimaryKey string
}

// Option overrides a convention of For.
type Option func(*Schema)

// WithTable sets the table instead of deriving it from the name.
func WithTable(table string) Option {
	return func(s *Schema) {
		s.Table = table
	}
}

// WithPrimaryKey sets the primary key column. Default: "id".
func WithPrimaryKey(col string) Option {
	return func(s *Schema) {
		s.PrimaryKey = col
	}
}

// For returns the schema of the named model. The table defaults to the
// snake_case plural of the name: User is "users", UserAccount is "user_accounts".
func For(name string, opts ...Option) Schema {
	s := Schema{
		Name:       name,
		Table:      TableName(name),
		PrimaryKey: DefaultPrimaryKey,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Of returns the schema for T, named after its Go type.
func Of[T any](opts ...Option) Schema {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return For(t.Name(), opts...)
}

// TableName derives a table from a model name.
func TableName(name string) string {
	return inflection.Plural(snake(name))
}

// snake converts CamelCase to snake_case. Acronyms stay together:
// HTTPRequest is "http_request".
func snake(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
