package domain

// Field names an attribute a node can be filtered on. Hardware, IP and ticket
// fields match when any current hardware row or linked ticket matches.
type Field string

const (
	FieldVID            Field = "vid"
	FieldVIDNumber      Field = "vid_number"
	FieldName           Field = "name"
	FieldCategory       Field = "category"
	FieldServerNumber   Field = "server_number"
	FieldNetworkID      Field = "network_id"
	FieldIP             Field = "ip"
	FieldVersion        Field = "version"
	FieldVersionDecoded Field = "version_decoded"
	FieldTicket         Field = "ticket"
	FieldCreationDate   Field = "creation_date"
	FieldDeletionDate   Field = "deletion_date"
)

// DateLayout is the textual form timestamps are matched against.
const DateLayout = "2006-01-02T15:04:05Z"

// Predicate is a filter over current node rows. Repositories translate the
// tree into their own query language.
type Predicate interface {
	predicate()
}

// Equal matches Field == Value.
type Equal struct {
	Field    Field
	Value    string
	FoldCase bool
}

// Contains matches when Value occurs literally in Field.
type Contains struct {
	Field    Field
	Value    string
	FoldCase bool
}

type HasSuffix struct {
	Field Field
	Value string
}

// Matches applies a case-insensitive regular expression to Field. Callers
// must only build it from patterns that compile.
type Matches struct {
	Field   Field
	Pattern string
}

// Between matches Lower <= Field <= Upper for numeric fields.
type Between struct {
	Field Field
	Lower uint32
	Upper uint32
}

type EqualInt struct {
	Field Field
	Value int64
}

type And []Predicate

type Or []Predicate

type nothing struct{}

type anything struct{}

var (
	// Nothing matches no node.
	Nothing Predicate = nothing{}
	// Anything matches every node.
	Anything Predicate = anything{}
)

func (Equal) predicate()     {}
func (Contains) predicate()  {}
func (HasSuffix) predicate() {}
func (Matches) predicate()   {}
func (Between) predicate()   {}
func (EqualInt) predicate()  {}
func (And) predicate()       {}
func (Or) predicate()        {}
func (nothing) predicate()   {}
func (anything) predicate()  {}

// AllOf intersects predicates, folding away Anything and short-circuiting on
// Nothing.
func AllOf(preds ...Predicate) Predicate {
	out := make(And, 0, len(preds))
	for _, p := range preds {
		switch p := p.(type) {
		case nil, anything:
		case nothing:
			return Nothing
		case And:
			inner := AllOf(p...)
			if inner == Nothing {
				return Nothing
			}
			switch inner := inner.(type) {
			case anything:
			case And:
				out = append(out, inner...)
			default:
				out = append(out, inner)
			}
		default:
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return Anything
	case 1:
		return out[0]
	}
	return out
}

// AnyOf unions predicates, folding away Nothing and short-circuiting on
// Anything.
func AnyOf(preds ...Predicate) Predicate {
	out := make(Or, 0, len(preds))
	for _, p := range preds {
		switch p := p.(type) {
		case nil, nothing:
		case anything:
			return Anything
		case Or:
			inner := AnyOf(p...)
			if inner == Anything {
				return Anything
			}
			switch inner := inner.(type) {
			case nothing:
			case Or:
				out = append(out, inner...)
			default:
				out = append(out, inner)
			}
		default:
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return Nothing
	case 1:
		return out[0]
	}
	return out
}
