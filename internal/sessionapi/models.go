package sessionapi

// createResponse is the success body for POST /Session/Create.
type createResponse struct {
	Session string `json:"session"`
}

// failureResponse is the error body shape shared by all failures.
type failureResponse struct {
	HasError bool   `json:"hasError"`
	Message  string `json:"message"`
}
