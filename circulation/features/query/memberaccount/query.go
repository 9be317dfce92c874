package memberaccount

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const queryType = "MemberAccount"

// Query asks for the account as it stands at At; accruing fines and eligibility depend on it.
type Query struct {
	MemberID core.MemberIDString `validate:"required"`
	At       time.Time
}

func (q Query) QueryType() string {
	return queryType
}

func BuildQuery(memberID string, at time.Time) Query {
	return Query{MemberID: memberID, At: at.UTC()}
}
