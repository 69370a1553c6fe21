package request

// ClockRequest is the request body for clocking in or out
type ClockRequest struct {
	StudentNumber string `json:"student_number"`
}
