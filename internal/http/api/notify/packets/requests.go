package packets

// body a fired queue task POSTs to the dispatch endpoint
type DispatchRequest struct {
	PushToken string            `json:"push_token" binding:"required"`
	Title     string            `json:"title" binding:"required"`
	Body      string            `json:"body" binding:"required"`
	Data      map[string]string `json:"data"`
}
