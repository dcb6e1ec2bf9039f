package model

// LocationStat counts finished bookings whose address mentions a location
type LocationStat struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Cancelled int    `json:"cancelled"`
}

// Stats backs the admin dashboard
type Stats struct {
	Waitlist  int            `json:"waitlist"`
	Services  int            `json:"services"`
	Revenue   float64        `json:"revenue"`
	Locations []LocationStat `json:"locations"`
}

type SetVisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// MessageResponse is the body of actions that return no entity
type MessageResponse struct {
	Message string `json:"message"`
}
