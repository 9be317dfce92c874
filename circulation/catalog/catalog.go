// Package catalog owns titles and their copies.
//
// The Catalog is a projection over catalog, loan and reservation events; it holds no
// authority of its own. Copy transitions are validated with the Copy methods before a decision
// emits events, the projection then replays the resulting facts.
package catalog

import (
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

// Title is a catalogued title with its copies in the order they were added.
type Title struct {
	ID     core.TitleIDString
	ISBN   string
	Name   string
	Author string
	Copies []Copy
}

// TotalCopies counts every copy, Lost ones included.
func (t Title) TotalCopies() int {
	return len(t.Copies)
}

type title struct {
	core.TitleCatalogued
	copyIDs []core.CopyIDString
}

// Catalog is the projected state of titles and copies.
type Catalog struct {
	titles map[core.TitleIDString]*title
	copies map[core.CopyIDString]*Copy
}

func New() *Catalog {
	return &Catalog{
		titles: make(map[core.TitleIDString]*title),
		copies: make(map[core.CopyIDString]*Copy),
	}
}

// Apply folds one event into the catalog. Events for unknown titles or copies are ignored.
func (c *Catalog) Apply(event core.DomainEvent) {
	switch e := event.(type) {
	case core.TitleCatalogued:
		if _, ok := c.titles[e.TitleID]; !ok {
			c.titles[e.TitleID] = &title{TitleCatalogued: e}
		}

	case core.CopyAddedToTitle:
		t, ok := c.titles[e.TitleID]
		if !ok {
			return
		}

		if _, exists := c.copies[e.CopyID]; exists {
			return
		}

		c.copies[e.CopyID] = &Copy{ID: e.CopyID, TitleID: e.TitleID, State: CopyAvailable}
		t.copyIDs = append(t.copyIDs, e.CopyID)

	case core.LoanOpened:
		c.set(e.CopyID, CopyLent)

	case core.LoanClosed:
		// A lost copy stays Lent until CopyMarkedLost, which is part of the same append.
		if !e.CopyLost {
			c.set(e.CopyID, CopyAvailable)
		}

	case core.ReservationReadyForPickup:
		c.set(e.CopyID, CopyReservedPendingPickup)

	case core.ReservationExpired:
		c.set(e.CopyID, CopyAvailable)

	case core.ReservationCancelled:
		if e.CopyID != "" {
			c.set(e.CopyID, CopyAvailable)
		}

	case core.CopyMarkedLost:
		c.set(e.CopyID, CopyLost)

	case core.CopyFound:
		c.set(e.CopyID, CopyAvailable)
	}
}

func (c *Catalog) set(copyID core.CopyIDString, state CopyState) {
	if cp, ok := c.copies[copyID]; ok {
		cp.State = state
	}
}

// Title returns the title with a snapshot of its copies.
func (c *Catalog) Title(titleID core.TitleIDString) (Title, bool) {
	t, ok := c.titles[titleID]
	if !ok {
		return Title{}, false
	}

	copies := make([]Copy, 0, len(t.copyIDs))
	for _, id := range t.copyIDs {
		copies = append(copies, *c.copies[id])
	}

	return Title{
		ID:     t.TitleID,
		ISBN:   t.ISBN,
		Name:   t.Name,
		Author: t.Author,
		Copies: copies,
	}, true
}

// HasTitle reports whether the title was catalogued.
func (c *Catalog) HasTitle(titleID core.TitleIDString) bool {
	_, ok := c.titles[titleID]
	return ok
}

// Copy returns a snapshot of one copy.
func (c *Catalog) Copy(copyID core.CopyIDString) (Copy, bool) {
	cp, ok := c.copies[copyID]
	if !ok {
		return Copy{}, false
	}

	return *cp, true
}

// FindAvailableCopy returns the first Available copy in catalogue order.
// The bool is false when every copy is taken; the error is NotFound for an unknown title.
func (c *Catalog) FindAvailableCopy(titleID core.TitleIDString) (Copy, bool, error) {
	t, ok := c.titles[titleID]
	if !ok {
		return Copy{}, false, core.NotFound(core.EntityTitle, titleID)
	}

	for _, id := range t.copyIDs {
		if cp := c.copies[id]; cp.State == CopyAvailable {
			return *cp, true, nil
		}
	}

	return Copy{}, false, nil
}

// StateCounts counts the title's copies per state. Every state is present in the result.
func (c *Catalog) StateCounts(titleID core.TitleIDString) map[CopyState]int {
	counts := make(map[CopyState]int, len(AllCopyStates))
	for _, s := range AllCopyStates {
		counts[s] = 0
	}

	if t, ok := c.titles[titleID]; ok {
		for _, id := range t.copyIDs {
			counts[c.copies[id].State]++
		}
	}

	return counts
}
