package dto

type ParseStopsRequest struct {
	Text   string `json:"text" validate:"required,max=100000"`
	Offset int    `json:"offset" validate:"min=0"`
}

type ParseIssueResponse struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

type ParseStopsResponse struct {
	Stops  []StopResponse       `json:"stops"`
	Issues []ParseIssueResponse `json:"issues"`
}
