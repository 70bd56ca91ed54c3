package types

// PageRecord is one page of one source PDF after ingestion.
// (Filename, PageNumber) is unique within a course and every embedding in a
// course has the same dimensionality.
type PageRecord struct {
	Filename    string    `json:"filename"`
	PageNumber  int       `json:"page_number"` // 1-based
	PageContent string    `json:"page_content"`
	Embedding   []float64 `json:"embedding"`
}

// CourseMeta is the small persisted record next to the page table.
// Updated is an ISO-8601 UTC timestamp with a trailing Z.
type CourseMeta struct {
	Title   string `json:"title"`
	Updated string `json:"updated"`
}

// CourseInfo summarizes one course for the admin console.
type CourseInfo struct {
	Slug    string  `json:"slug"`
	Title   string  `json:"title"`
	NumPDFs int     `json:"num_pdfs"`
	SizeMB  float64 `json:"size_mb"`
	Updated string  `json:"updated"`
}

// RetrievedPage is one row of an ephemeral retrieval result.
type RetrievedPage struct {
	Record PageRecord `json:"record"`
	Score  float64    `json:"score"` // cosine similarity in [-1, 1]
	Rank   int        `json:"rank"`  // 1-based
}

// Citation resolves one citation index to its source location.
type Citation struct {
	Filename   string `json:"filename"`
	PageNumber int    `json:"page_number"`
}

// UploadFile carries one uploaded PDF through the lifecycle manager.
type UploadFile struct {
	Name string
	Data []byte
}
