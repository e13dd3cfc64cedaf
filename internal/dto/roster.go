package dto

// RosterResponse returns a team's subcontractor list.
type RosterResponse struct {
	Team  string   `json:"team"`
	Names []string `json:"names"`
}

// SaveRosterRequest captures PUT /rosters/:team payload. Names come as one
// newline-separated blob, mirroring the roster editor textarea.
type SaveRosterRequest struct {
	Names string `json:"names" binding:"required"`
}
