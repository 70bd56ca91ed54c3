package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type UploadResponse struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

type SearchResponse struct {
	Results []SourceExcerpt `json:"results"`
}

type RebuildResponse struct {
	Pages int `json:"pages"`
}
