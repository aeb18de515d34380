package schema

import (
	"unicode"
	"unicode/utf8"
)

// Pascal upper-cases the first rune of s and leaves the rest untouched.
func Pascal(s string) string {
	return mapFirst(s, unicode.ToUpper)
}

// Camel lower-cases the first rune of s and leaves the rest untouched.
func Camel(s string) string {
	return mapFirst(s, unicode.ToLower)
}

func mapFirst(s string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(fn(r)) + s[size:]
}

// JoinTableName returns the ManyToMany join table of owner.field.
func JoinTableName(owner, field string) string {
	return owner + "Has" + Pascal(field)
}

// ListTableName returns the table holding the elements of owner.field.
func ListTableName(owner, field string) string {
	return owner + Pascal(field) + "List"
}

// TranslationTableName returns the shadow table of multilingual fields.
func TranslationTableName(model string) string {
	return model + "_translation"
}

// JoinColumns returns the owner and target FK columns of a join table.
func JoinColumns(owner, target string) (ownerCol, targetCol string) {
	return Camel(owner), Camel(target)
}

// List table columns.
const (
	ListForeignKey = "fk"
	ListValue      = "value"
)
