package model

// Variant identifies which side of a comparison a line belongs to.
type Variant string

const (
	VariantSource Variant = "source"
	VariantTarget Variant = "target"
)

// LogicalLine is one line of a snapshot. Immutable after Normalize.
type LogicalLine struct {
	Index     int
	Raw       string
	IsComment bool
	IsBlank   bool
}

// FileSnapshot is the ordered line sequence of one variant.
type FileSnapshot struct {
	Name  string
	Lines []LogicalLine
}

// Len returns the number of lines in the snapshot.
func (s *FileSnapshot) Len() int {
	return len(s.Lines)
}

// OpKind is the kind of a single edit operation.
type OpKind int

const (
	OpEqual OpKind = iota
	OpInsert
	OpDelete
	OpSubstitute
	OpMove
)

func (k OpKind) String() string {
	switch k {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpSubstitute:
		return "substitute"
	case OpMove:
		return "move"
	default:
		return "unknown"
	}
}

// EditOp is one step of the edit script between two snapshots.
// SourceIndex and TargetIndex are -1 when the op does not touch that side
// (Insert has no source line, Delete has no target line).
type EditOp struct {
	Kind        OpKind
	SourceIndex int
	TargetIndex int
	SourceLine  LogicalLine
	TargetLine  LogicalLine
}

// DirectiveKind is the intent of a marker comment.
type DirectiveKind int

const (
	MustStay DirectiveKind = iota
	MayRemove
	MustFilter
)

func (k DirectiveKind) String() string {
	switch k {
	case MustStay:
		return "must-stay"
	case MayRemove:
		return "may-remove"
	case MustFilter:
		return "must-filter"
	default:
		return "unknown"
	}
}

// Precedence orders directive kinds when several scope one line; higher wins.
func (k DirectiveKind) Precedence() int {
	switch k {
	case MustStay:
		return 3
	case MustFilter:
		return 2
	case MayRemove:
		return 1
	default:
		return 0
	}
}

// Directive is a parsed marker comment and the line span it governs.
// MarkerIndex is the comment line the marker sits on; ScopeStart/ScopeEnd is
// the inclusive range of lines it annotates (the marker line itself when no
// code follows it).
type Directive struct {
	Kind        DirectiveKind
	MarkerIndex int
	ScopeStart  int
	ScopeEnd    int
	Text        string
}

// Scopes reports whether the directive governs the given line index.
func (d Directive) Scopes(index int) bool {
	return index >= d.ScopeStart && index <= d.ScopeEnd
}

// Hunk is a contiguous run of non-equal edit ops plus the directives whose
// scope overlaps its span, split by the side they annotate. Hunks reference
// snapshot lines, they never own them.
type Hunk struct {
	Ops              []EditOp
	SourceDirectives []Directive
	TargetDirectives []Directive
}

// Verdict is the final tri-state disposition of a line.
type Verdict int

const (
	Keep Verdict = iota
	Remove
	Filtered
)

func (v Verdict) String() string {
	switch v {
	case Keep:
		return "keep"
	case Remove:
		return "remove"
	case Filtered:
		return "filtered"
	default:
		return "unknown"
	}
}

// Decision is the resolved per-line verdict, keyed by (Variant, LineIndex).
type Decision struct {
	Variant    Variant `json:"variant"`
	LineIndex  int     `json:"lineIndex"`
	Verdict    string  `json:"verdict"`
	Provenance string  `json:"provenance"`
}

// Result is the outcome of comparing one variant pair.
type Result struct {
	SourcePath string
	TargetPath string
	Decisions  []Decision
	Warnings   []string
}
