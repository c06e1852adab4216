package enhance

// EnhanceRequest is the gateway request body.
type EnhanceRequest struct {
	Content     string    `json:"content"`
	EnhanceType Directive `json:"enhanceType"`
}

// EnhanceResponse is the gateway success body.
type EnhanceResponse struct {
	EnhancedContent string `json:"enhancedContent"`
}
