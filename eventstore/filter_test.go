package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

func lookupOf(props map[string]string) eventstore.PayloadLookup {
	return func(key string) (string, bool) {
		v, ok := props[key]
		return v, ok
	}
}

func Test_Filter_Matches_EverythingWhenEmpty(t *testing.T) {
	// arrange
	filter := eventstore.NewFilter()

	// act
	matches := filter.Matches("AnyEvent", lookupOf(nil))

	// assert
	assert.True(t, matches, "empty filter should match every event")
}

func Test_Filter_Matches(t *testing.T) {
	payload := lookupOf(map[string]string{"TitleID": "t-1", "MemberID": "m-1"})

	testCases := []struct {
		name      string
		filter    eventstore.Filter
		eventType string
		expected  bool
	}{
		{
			name:      "type only item matches listed type",
			filter:    eventstore.NewFilter(eventstore.Types("LoanOpened", "LoanClosed")),
			eventType: "LoanClosed",
			expected:  true,
		},
		{
			name:      "type only item rejects other type",
			filter:    eventstore.NewFilter(eventstore.Types("LoanOpened")),
			eventType: "LoanClosed",
			expected:  false,
		},
		{
			name: "any predicate matches when one property matches",
			filter: eventstore.NewFilter(
				eventstore.Types("LoanOpened").WhereAny(eventstore.P("TitleID", "t-2"), eventstore.P("MemberID", "m-1")),
			),
			eventType: "LoanOpened",
			expected:  true,
		},
		{
			name: "any predicate rejects when no property matches",
			filter: eventstore.NewFilter(
				eventstore.Types("LoanOpened").WhereAny(eventstore.P("TitleID", "t-2"), eventstore.P("MemberID", "m-2")),
			),
			eventType: "LoanOpened",
			expected:  false,
		},
		{
			name: "all predicates match",
			filter: eventstore.NewFilter(
				eventstore.Types("LoanOpened").WhereAll(eventstore.P("TitleID", "t-1"), eventstore.P("MemberID", "m-1")),
			),
			eventType: "LoanOpened",
			expected:  true,
		},
		{
			name: "all predicates reject when one differs",
			filter: eventstore.NewFilter(
				eventstore.Types("LoanOpened").WhereAll(eventstore.P("TitleID", "t-1"), eventstore.P("MemberID", "m-2")),
			),
			eventType: "LoanOpened",
			expected:  false,
		},
		{
			name: "predicate on missing property does not match",
			filter: eventstore.NewFilter(
				eventstore.Types("LoanOpened").WhereAny(eventstore.P("LoanID", "l-1")),
			),
			eventType: "LoanOpened",
			expected:  false,
		},
		{
			name: "items are combined with OR",
			filter: eventstore.NewFilter(
				eventstore.Types("TitleCatalogued").WhereAny(eventstore.P("TitleID", "t-9")),
				eventstore.Types("LoanOpened").WhereAny(eventstore.P("MemberID", "m-1")),
			),
			eventType: "LoanOpened",
			expected:  true,
		},
		{
			name:      "item without types matches any type by predicate",
			filter:    eventstore.NewFilter(eventstore.Types().WhereAny(eventstore.P("TitleID", "t-1"))),
			eventType: "Whatever",
			expected:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			matches := tc.filter.Matches(tc.eventType, payload)

			// assert
			assert.Equal(t, tc.expected, matches)
		})
	}
}

func Test_FilterItem_Types_RemovesDuplicates(t *testing.T) {
	// act
	item := eventstore.Types("A", "B", "A")

	// assert
	assert.Equal(t, []string{"A", "B"}, item.EventTypes())
}

func Test_Filter_String_IncludesAllComponents(t *testing.T) {
	// arrange
	filter := eventstore.NewFilter(
		eventstore.Types("EventA", "EventB").WhereAll(eventstore.P("TitleID", "t-1")),
		eventstore.Types("EventC").WhereAny(eventstore.P("MemberID", "m-1")),
	)

	// act
	rendered := filter.String()

	// assert
	assert.Contains(t, rendered, "EventA")
	assert.Contains(t, rendered, "EventC")
	assert.Contains(t, rendered, "TitleID=t-1")
	assert.Contains(t, rendered, "AND")
	assert.Contains(t, rendered, "OR")
}
