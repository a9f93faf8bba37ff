package ticket

// Record is the decrypted ticket returned by the backend for one QR
// payload. It lives only while the result is displayed; nothing caches it.
type Record struct {
	EventName     string   `json:"eventName"`
	FullName      string   `json:"fullName"`
	OrderCode     string   `json:"orderCode"`
	TicketDetails []Detail `json:"ticketDetails"`
}

// Detail is one purchased seat inside an order.
type Detail struct {
	TicketPurchaseID int64  `json:"ticketPurchaseId"`
	TicketType       string `json:"ticketType"`
	ZoneName         string `json:"zoneName"`
	SeatName         string `json:"seatName"`
}
