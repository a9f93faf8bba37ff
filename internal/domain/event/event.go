package event

// Event is one organizer event with its scheduled activities.
type Event struct {
	EventID    int64      `json:"eventId"`
	EventName  string     `json:"eventName"`
	URL        string     `json:"url,omitempty"`
	Activities []Activity `json:"eventActivities"`
}

// Activity is a single scheduled occurrence of an event. Date is
// yyyy-mm-dd, the times are hh:mm:ss, all in the venue's local time.
type Activity struct {
	EventActivityID   int64  `json:"eventActivityId"`
	EventActivityName string `json:"eventActivityName"`
	Date              string `json:"date"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
}

// Detail is the full event record behind GET /event/{id}.
type Detail struct {
	EventID     int64  `json:"eventId"`
	EventName   string `json:"eventName"`
	Description string `json:"description,omitempty"`
	BannerURL   string `json:"bannerURL,omitempty"`
	LogoURL     string `json:"logoURL,omitempty"`
	CompanyID   int64  `json:"companyId,omitempty"`
}
