package model

import (
	"github.com/google/uuid"
)

// Availability comes in two shapes that coexist in the data:
//
//   - recurring: DayOfWeek is set (0=Sunday..6=Saturday) with a start/end
//     window that re-offers every week while Active;
//   - discrete: Date and Time pin a single bookable slot whose Available flag
//     flips to false once claimed.
//
// Neither shape is authoritative over the other; resolution for a given day
// unions both (recurring windows are sliced into slots and merged with the
// discrete rows).
type Availability struct {
	Base
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	DayOfWeek  *int      `db:"day_of_week" json:"day_of_week,omitempty"`
	Date       *string   `db:"date" json:"date,omitempty"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time,omitempty"`
	Active     bool      `db:"active" json:"active"`
	Available  bool      `db:"available" json:"available"`
}

func (a *Availability) IsRecurring() bool {
	return a.DayOfWeek != nil
}

type CreateAvailabilityRequest struct {
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	Date      *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime string  `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string  `json:"end_time" binding:"omitempty,datetime=15:04"`
}

type UpdateAvailabilityRequest struct {
	StartTime *string `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time" binding:"omitempty,datetime=15:04"`
	Active    *bool   `json:"active"`
}

// TimeSlot is a single offerable booking slot for a provider on a date.
type TimeSlot struct {
	Time      string     `json:"time"`
	Available bool       `json:"available"`
	SlotID    *uuid.UUID `json:"slot_id,omitempty"`
}
