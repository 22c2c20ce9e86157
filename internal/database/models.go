package database

// Article is a stored article together with its relevance decision.
type Article struct {
	ID              int64
	URL             string
	Title           string
	Source          *string
	SourceURL       *string
	PublishedDate   *string
	Content         *string
	Fingerprint     *string
	Summary         *string
	Relevant        bool
	RelevanceReason *string
	DecisionSource  *string
	ScrapedAt       *string
}

// FeedbackRecord is the full set of human corrections: explicit URL verdicts
// and keyword adjustments. A URL appears on at most one side; the store
// enforces that on write.
type FeedbackRecord struct {
	IncludedURLs    []string
	ExcludedURLs    []string
	AddedKeywords   []string
	RemovedKeywords []string
}

// ModelArtifact is the persisted trained model, stored as a JSON payload.
// Derived data: rebuilt by training, never edited in place.
type ModelArtifact struct {
	Payload    string
	SampleSize int
	TrainedAt  *string
}

// RunReport is the stored markdown report for one pipeline run.
type RunReport struct {
	ID                 int64
	RunDate            string
	BodyMarkdown       string
	SitesAttempted     int
	ArticlesConsidered int
	ArticlesKept       int
	GeneratedAt        *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalArticles    int
	RelevantArticles int
	IncludedURLs     int
	ExcludedURLs     int
	AddedKeywords    int
	RemovedKeywords  int
	RunReports       int
	ModelTrainedAt   string
	ModelSampleSize  int
}
