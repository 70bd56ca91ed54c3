package types

type LoginRequest struct {
	Password string `json:"password"`
}

type RenameCourseRequest struct {
	Course string `json:"course"`
	Title  string `json:"title"`
}

type SearchRequest struct {
	Course string `json:"course"`
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
}
