package storage

// PhaseOccupancy is one row of the dashboard workshop snapshot.
type PhaseOccupancy struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// DashboardSummary is the response of GET /dashboard/summary.
type DashboardSummary struct {
	TotalCompanies    int              `json:"totalCompanies"`
	TotalOrders       int              `json:"totalOrders"`
	ActiveOrders      int              `json:"activeOrders"`
	CompletedOrders   int              `json:"completedOrders"`
	TotalMeasurements int              `json:"totalMeasurements"`
	WorkshopSnapshot  []PhaseOccupancy `json:"workshopSnapshot"`
}
