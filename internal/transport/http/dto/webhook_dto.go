package dto

type UploadWebhookRequest struct {
	Event    string `json:"event"`
	Key      string `json:"key,omitempty"`
	FileKey  string `json:"fileKey,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

type UploadWebhookResponse struct {
	OK bool `json:"ok"`
}
