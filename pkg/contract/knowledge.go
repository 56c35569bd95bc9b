package contract

// KnowledgeStatus reports the RAG index as seen by the backend. The client
// refetches it after every mutation and never computes counts itself.
type KnowledgeStatus struct {
	TotalDocuments int                                      `json:"total_documents"`
	Resources      map[ResourceKind]ResourceKnowledgeStatus `json:"resources"`
}

// ResourceKnowledgeStatus is the per-resource indexing state.
type ResourceKnowledgeStatus struct {
	DDLExists       bool `json:"ddl_exists"`
	KnowledgeExists bool `json:"knowledge_exists"`
	DocumentCount   int  `json:"document_count"`
}

// IndexRequest is the body of POST /api/knowledge/index.
type IndexRequest struct {
	Resource ResourceKind `json:"resource"`
}

// IndexResponse is returned by the index, index-all and upload endpoints.
// Resource is a kind, "all" or "global" depending on the call.
type IndexResponse struct {
	Success       bool   `json:"success"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Resource      string `json:"resource"`
}
