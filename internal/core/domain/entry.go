package domain

// Entry types known to the knowledge base.
const (
	EntryTypeDefinition = "definition"
	EntryTypeDoctrine   = "doctrine"
	EntryTypeStatute    = "statute"
	EntryTypeCase       = "case"
)

type Source struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// Entry is one curated knowledge-base record. Entries are loaded once at
// startup and never modified afterwards.
type Entry struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Type      string   `json:"type" yaml:"type"`
	Region    string   `json:"region" yaml:"region"`
	Era       string   `json:"era" yaml:"era"`
	Summary   string   `json:"summary" yaml:"summary"`
	Excerpt   string   `json:"excerpt" yaml:"excerpt"`
	Keywords  []string `json:"keywords" yaml:"keywords"`
	Citations []string `json:"citations" yaml:"citations"`
	Sources   []Source `json:"sources" yaml:"sources"`
}

// Result is an Entry scored against a single query.
type Result struct {
	Entry
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}

type Answer struct {
	Answer    string   `json:"answer"`
	FollowUps []string `json:"followUps"`
}
