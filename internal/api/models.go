package api

// Wire models for the Rag-project backend. Field names follow the JSON contract
// exactly. The backend emits naive ISO-8601 timestamps (no zone), so timestamp
// fields stay strings here; callers that need a time.Time parse them.

// UserProfile is the authenticated user snapshot returned by /me.
type UserProfile struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FullName    *string `json:"full_name"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	CreatedAt   string  `json:"created_at"`
}

// TokenResponse is the credential-exchange result from /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// DocumentSummary is one row of the paginated document listing.
type DocumentSummary struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	FileType   *string `json:"file_type"`
	FileSize   *int64  `json:"file_size"`
	Processed  bool    `json:"processed"`
	UploadedAt string  `json:"uploaded_at"`
}

// DocumentList is the /documents response.
type DocumentList struct {
	Documents  []DocumentSummary `json:"documents"`
	TotalCount int               `json:"total_count"`
}

// DocumentStatus extends the summary with ingestion progress.
type DocumentStatus struct {
	DocumentSummary
	ChunksStored int    `json:"chunks_stored"`
	Message      string `json:"message"`
}

// UploadResponse is returned after a multipart upload.
type UploadResponse struct {
	ID            int64  `json:"id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
	Message       string `json:"message"`
	Processed     bool   `json:"processed"`
	Timestamp     string `json:"timestamp"`
}

// SourceRef is a cited passage supporting an answer.
type SourceRef struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Text       string  `json:"text"`
	DocumentID int64   `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// AskRequest is the /chat/ask payload.
type AskRequest struct {
	Question       string `json:"question"`
	MaxResults     int    `json:"max_results"`
	ResponseStyle  string `json:"response_style"`
	IncludeSources bool   `json:"include_sources"`
}

// AskResponse is one answered question with provenance.
type AskResponse struct {
	Question         string      `json:"question"`
	Answer           string      `json:"answer"`
	Sources          []SourceRef `json:"sources"`
	Confidence       float64     `json:"confidence"`
	ContextAvailable bool        `json:"context_available"`
	RetrievalTime    string      `json:"retrieval_time"`
	LLMTime          string      `json:"llm_time"`
	TotalTime        string      `json:"total_time"`
	Timestamp        string      `json:"timestamp"`
	Success          bool        `json:"success"`
}

// SearchResponse is the /chat/search result set.
type SearchResponse struct {
	Query        string      `json:"query"`
	Results      []SourceRef `json:"results"`
	TotalResults int         `json:"total_results"`
}

// ProbeResponse reports backend LLM connectivity.
type ProbeResponse struct {
	OpenAIStatus string `json:"openai_status"`
}

// DeleteResponse acknowledges a document deletion.
type DeleteResponse struct {
	Message   string `json:"message"`
	DeletedID int64  `json:"deleted_id"`
}
