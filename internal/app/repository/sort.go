package repository

import (
	"strings"

	"gorm.io/gorm/clause"
)

type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

// ParseSortOrder treats anything other than "desc" as ascending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return SortDesc
	}
	return SortAsc
}

// UserSortField is the closed set of columns the user list can be ordered by.
type UserSortField int

const (
	UserSortName UserSortField = iota
	UserSortEmail
	UserSortAddress
	UserSortRole
)

func ParseUserSortField(s string) UserSortField {
	switch s {
	case "email":
		return UserSortEmail
	case "address":
		return UserSortAddress
	case "role":
		return UserSortRole
	default:
		return UserSortName
	}
}

func (f UserSortField) column() clause.Column {
	switch f {
	case UserSortEmail:
		return clause.Column{Table: "users", Name: "email"}
	case UserSortAddress:
		return clause.Column{Table: "users", Name: "address"}
	case UserSortRole:
		return clause.Column{Table: "users", Name: "role"}
	default:
		return clause.Column{Table: "users", Name: "name"}
	}
}

// StoreSortField is the closed set of store list columns.
// StoreSortEmail is only offered on the admin list.
type StoreSortField int

const (
	StoreSortName StoreSortField = iota
	StoreSortEmail
	StoreSortAddress
)

func ParseStoreSortField(s string) StoreSortField {
	switch s {
	case "email":
		return StoreSortEmail
	case "address":
		return StoreSortAddress
	default:
		return StoreSortName
	}
}

// ParsePublicStoreSortField is the normal-user variant: name or address.
func ParsePublicStoreSortField(s string) StoreSortField {
	if s == "address" {
		return StoreSortAddress
	}
	return StoreSortName
}

func (f StoreSortField) column() clause.Column {
	switch f {
	case StoreSortEmail:
		return clause.Column{Table: "stores", Name: "email"}
	case StoreSortAddress:
		return clause.Column{Table: "stores", Name: "address"}
	default:
		return clause.Column{Table: "stores", Name: "name"}
	}
}

// RatingSortField orders the admin rating list. Default is newest first.
type RatingSortField int

const (
	RatingSortCreatedAt RatingSortField = iota
	RatingSortValue
	RatingSortUserName
	RatingSortStoreName
)

// ParseRatingSort maps the query pair to a field and order. An unknown or
// empty field yields created_at descending regardless of sortOrder.
func ParseRatingSort(field, order string) (RatingSortField, SortOrder) {
	switch field {
	case "value":
		return RatingSortValue, ParseSortOrder(order)
	case "createdAt":
		return RatingSortCreatedAt, ParseSortOrder(order)
	case "userName":
		return RatingSortUserName, ParseSortOrder(order)
	case "storeName":
		return RatingSortStoreName, ParseSortOrder(order)
	default:
		return RatingSortCreatedAt, SortDesc
	}
}

func (f RatingSortField) column() clause.Column {
	switch f {
	case RatingSortValue:
		return clause.Column{Table: "ratings", Name: "value"}
	case RatingSortUserName:
		return clause.Column{Table: "users", Name: "name"}
	case RatingSortStoreName:
		return clause.Column{Table: "stores", Name: "name"}
	default:
		return clause.Column{Table: "ratings", Name: "created_at"}
	}
}

func orderBy(col clause.Column, order SortOrder) clause.OrderByColumn {
	return clause.OrderByColumn{Column: col, Desc: order == SortDesc}
}

// tieBreaker keeps paging-free lists stable when the sort column has duplicates.
func tieBreaker(table string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// containsClause is used with containsPattern for case-insensitive substring filters.
func containsClause(table, column string) string {
	return "LOWER(" + table + "." + column + ") LIKE ? ESCAPE '\\'"
}
