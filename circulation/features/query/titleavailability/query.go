package titleavailability

import (
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const queryType = "TitleAvailability"

type Query struct {
	TitleID core.TitleIDString `validate:"required"`
}

func (q Query) QueryType() string {
	return queryType
}

func BuildQuery(titleID string) Query {
	return Query{TitleID: titleID}
}
