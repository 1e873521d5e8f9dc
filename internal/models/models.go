package models

import "errors"

// Chunk is a bounded span of extracted document text, the unit of
// embedding and retrieval.
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// ChunkEmbedding pairs a chunk with its embedding vector and source metadata.
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// ScoredChunk is a retrieval hit, most-similar first in result slices.
type ScoredChunk struct {
	Content        string
	Similarity     float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// Preferences are the user-selected knobs steering generated answers.
type Preferences struct {
	LearningStyle    string
	ComplexityLevel  string
	IncludeExamples  bool
	IncludeAnalogies bool
	IncludeQuestions bool
}

// IngestResult reports where the vector store for an uploaded document
// lives and how many chunks went into it.
type IngestResult struct {
	VectorStorePath string
	ChunkCount      int
}

// QueryRequest carries everything one answer generation needs. The API key
// field is honored only when the server has no key of its own configured.
type QueryRequest struct {
	Question         string `json:"question"`
	Kind             string `json:"kind,omitempty"`
	VectorStorePath  string `json:"vectorStorePath"`
	ModelName        string `json:"modelName"`
	GroqAPIKey       string `json:"groqApiKey,omitempty"`
	LearningStyle    string `json:"learningStyle"`
	ComplexityLevel  string `json:"complexityLevel"`
	IncludeExamples  bool   `json:"includeExamples"`
	IncludeAnalogies bool   `json:"includeAnalogies"`
	IncludeQuestions bool   `json:"includeQuestions"`
}

// Prefs collects the preference fields of a query request.
func (r QueryRequest) Prefs() Preferences {
	return Preferences{
		LearningStyle:    r.LearningStyle,
		ComplexityLevel:  r.ComplexityLevel,
		IncludeExamples:  r.IncludeExamples,
		IncludeAnalogies: r.IncludeAnalogies,
		IncludeQuestions: r.IncludeQuestions,
	}
}

// IngestRequest is the upload payload: document bytes as base64 plus the
// original file name, which is only used for temporary storage naming.
type IngestRequest struct {
	PDF      string `json:"pdf"`
	FileName string `json:"fileName"`
}

type IngestResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	VectorStorePath string `json:"vectorStorePath,omitempty"`
	ChunkCount      int    `json:"chunkCount,omitempty"`
	Error           string `json:"error,omitempty"`
}

type QueryResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer,omitempty"`
	Error   string `json:"error,omitempty"`
}

var (
	// ErrStoreNotFound means the vector store location does not exist or
	// holds nothing usable. Querying before ingesting is an error, never
	// an empty-but-successful result.
	ErrStoreNotFound = errors.New("vector store not found")

	// ErrModelMismatch means the store was built with a different
	// embedding model than the one configured now.
	ErrModelMismatch = errors.New("embedding model mismatch")
)
