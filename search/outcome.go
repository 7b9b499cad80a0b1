package search

// Kind discriminates the three possible search outcomes.
type Kind int

const (
	// KindSuccess means a result with both title and URL was found.
	KindSuccess Kind = iota
	// KindEmpty means the pipeline ran but found no usable result.
	KindEmpty
	// KindFailure means a pipeline stage failed.
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindEmpty:
		return "empty"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one search. It is built once by
// Classify and never modified.
type Outcome struct {
	Kind   Kind
	Result ExtractionResult // populated only for KindSuccess
	Err    error            // populated only for KindFailure
}

// Classify maps an extraction (or the error that prevented it) to an
// Outcome. Title and URL are both required for success; a description on
// its own is not a result.
func Classify(res ExtractionResult, err error) Outcome {
	switch {
	case err != nil:
		return Outcome{Kind: KindFailure, Err: err}
	case res.Title != "" && res.URL != "":
		return Outcome{Kind: KindSuccess, Result: res}
	default:
		return Outcome{Kind: KindEmpty}
	}
}

// Message returns the failure description, or "" for other kinds.
func (o Outcome) Message() string {
	if o.Kind != KindFailure || o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
