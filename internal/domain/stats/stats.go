package stats

// CheckinStats are the aggregate counts for one event activity. Each
// fetch replaces the previous snapshot wholesale; counts are not
// guaranteed to move monotonically between polls.
type CheckinStats struct {
	TotalCheckin int `json:"totalCheckin"`
	CheckedIn    int `json:"checkedIn"`
	NotCheckedIn int `json:"notCheckedIn"`
}
