package products

import "gorm.io/gorm/clause"

func forUpdateClause() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
