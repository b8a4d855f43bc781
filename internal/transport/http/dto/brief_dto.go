package dto

type GenerateBriefRequest struct {
	ImageURL    string `json:"imageUrl,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type GenerateBriefResponse struct {
	Brief     string `json:"brief"`
	Reasoning string `json:"reasoning,omitempty"`
}
