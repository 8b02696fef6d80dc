package order

import "time"

// PlacedStamp is the rendered purchase timestamp shown on a sales-history
// card. Orders are stored in UTC and rendered in a single configured display
// timezone, so the same order always shows the same stamp.
type PlacedStamp struct {
	Weekday string // "Monday"
	Date    string // "January 2, 2006"
	Time    string // "6:30 PM"
}

// Stamp renders the order's placement time in the given location.
func (o *Order) Stamp(loc *time.Location) PlacedStamp {
	local := o.PlacedAt.In(loc)
	return PlacedStamp{
		Weekday: local.Format("Monday"),
		Date:    local.Format("January 2, 2006"),
		Time:    local.Format("3:04 PM"),
	}
}
