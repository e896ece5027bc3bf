package ports

// CalendarChange announces that sessions changed inside a date range and any
// cached window overlapping it should be invalidated. It is the only event
// type the client broadcasts.
type CalendarChange struct {
	StartDate string
	EndDate   string
}

type CalendarEvents interface {
	Publish(change CalendarChange)
	// Subscribe registers fn for future changes and returns a cancel func.
	Subscribe(fn func(CalendarChange)) (cancel func())
}
