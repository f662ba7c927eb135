package domain

// PreserveClass names a category of content the compactor tries not to drop.
type PreserveClass string

const (
	PreserveNumbers     PreserveClass = "numbers"
	PreserveDates       PreserveClass = "dates"
	PreserveNames       PreserveClass = "names"
	PreserveDefinitions PreserveClass = "definitions"
	PreserveProcedures  PreserveClass = "procedures"
)

// DefaultPreserveClasses is applied when a compact request omits Preserve.
func DefaultPreserveClasses() []PreserveClass {
	return []PreserveClass{PreserveNumbers, PreserveDates, PreserveNames}
}

// CompactMode selects one of the four compaction strategies.
type CompactMode string

const (
	ModeStructural      CompactMode = "structural"
	ModeSalience        CompactMode = "salience"
	ModeMapReduce       CompactMode = "map_reduce"
	ModeQuestionFocused CompactMode = "question_focused"
)

// KeyPoint is a retained sentence with a pointer back at its source block.
type KeyPoint struct {
	Text     string `json:"text"`
	Citation string `json:"citation"`
}

// Quote is a verbatim span pulled from the original content, not the summary.
type Quote struct {
	Text     string `json:"text"`
	Citation string `json:"citation"`
}

// Compacted is the body of a CompactedPacket.
type Compacted struct {
	Summary         string     `json:"summary"`
	KeyPoints       []KeyPoint `json:"key_points"`
	ImportantQuotes []Quote    `json:"important_quotes"`
	Omissions       []string   `json:"omissions"`
	Warnings        []Warning  `json:"warnings"`
}

// CompactedPacket is the output of the compactor.
type CompactedPacket struct {
	SourceID    string    `json:"source_id"`
	OriginalURL string    `json:"original_url"`
	Compacted   Compacted `json:"compacted"`
	EstTokens   int       `json:"est_tokens"`
}
