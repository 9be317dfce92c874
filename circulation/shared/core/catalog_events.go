package core

import (
	"time"
)

const (
	TitleCataloguedEventType  = "TitleCatalogued"
	CopyAddedToTitleEventType = "CopyAddedToTitle"
	CopyMarkedLostEventType   = "CopyMarkedLost"
	CopyFoundEventType        = "CopyFound"
)

// TitleCatalogued is recorded when a title enters the catalogue.
type TitleCatalogued struct {
	TitleID    TitleIDString
	ISBN       string
	Name       string
	Author     string
	OccurredAt OccurredAt
}

func BuildTitleCatalogued(titleID, isbn, name, author string, occurredAt time.Time) TitleCatalogued {
	return TitleCatalogued{
		TitleID:    titleID,
		ISBN:       isbn,
		Name:       name,
		Author:     author,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e TitleCatalogued) IsEventType() string      { return TitleCataloguedEventType }
func (e TitleCatalogued) HasOccurredAt() time.Time { return e.OccurredAt }

// CopyAddedToTitle is recorded when a physical copy of a title is shelved.
type CopyAddedToTitle struct {
	CopyID     CopyIDString
	TitleID    TitleIDString
	OccurredAt OccurredAt
}

func BuildCopyAddedToTitle(copyID, titleID string, occurredAt time.Time) CopyAddedToTitle {
	return CopyAddedToTitle{
		CopyID:     copyID,
		TitleID:    titleID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopyAddedToTitle) IsEventType() string      { return CopyAddedToTitleEventType }
func (e CopyAddedToTitle) HasOccurredAt() time.Time { return e.OccurredAt }

// CopyMarkedLost is recorded when a copy can no longer be found.
type CopyMarkedLost struct {
	CopyID     CopyIDString
	TitleID    TitleIDString
	OccurredAt OccurredAt
}

func BuildCopyMarkedLost(copyID, titleID string, occurredAt time.Time) CopyMarkedLost {
	return CopyMarkedLost{
		CopyID:     copyID,
		TitleID:    titleID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopyMarkedLost) IsEventType() string      { return CopyMarkedLostEventType }
func (e CopyMarkedLost) HasOccurredAt() time.Time { return e.OccurredAt }

// CopyFound is recorded when a lost copy turns up again and goes back on the shelf.
type CopyFound struct {
	CopyID     CopyIDString
	TitleID    TitleIDString
	OccurredAt OccurredAt
}

func BuildCopyFound(copyID, titleID string, occurredAt time.Time) CopyFound {
	return CopyFound{
		CopyID:     copyID,
		TitleID:    titleID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e CopyFound) IsEventType() string      { return CopyFoundEventType }
func (e CopyFound) HasOccurredAt() time.Time { return e.OccurredAt }
