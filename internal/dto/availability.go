package dto

// CalendarDay describes one day cell of the date-picker feed.
type CalendarDay struct {
	Date       string `json:"date"`
	Status     string `json:"status"`
	Selectable bool   `json:"selectable"`
}

// CalendarResponse feeds the date-picker for one month of a draft.
type CalendarResponse struct {
	Month string        `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// SlotsResponse lists the valid pickup start times for one date.
type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// CommonWindowResponse is the shared opening window across every upcoming
// parcel of a draft, used to bound bulk time edits.
type CommonWindowResponse struct {
	Available   bool   `json:"available"`
	Open        string `json:"open,omitempty"`
	Close       string `json:"close,omitempty"`
	LatestStart string `json:"latestStart,omitempty"`
}
