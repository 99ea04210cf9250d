// Package types implements the Crema value-type lattice: the concrete
// representation of a type, the numeric-promotion order between kinds, and
// the assignability rule derived from it.
package types

// Kind identifies the scalar family of a Crema value, independent of
// whether it is a list of that kind.
type Kind int

const (
	Invalid Kind = iota
	Int
	UInt
	Double
	Char
	Bool
	Void
	String
	Record
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "Int"
	case UInt:
		return "UInt"
	case Double:
		return "Double"
	case Char:
		return "Char"
	case Bool:
		return "Bool"
	case Void:
		return "Void"
	case String:
		return "String"
	case Record:
		return "Record"
	default:
		return "Invalid"
	}
}

// Type is a value type: a kind, whether it denotes a list of that kind, and
// (only when Kind == Record) the name of the record declaration it refers
// to.
type Type struct {
	Kind       Kind
	IsList     bool
	RecordName string
}

// Scalar constructs a non-list type of the given kind.
func Scalar(k Kind) Type { return Type{Kind: k} }

// ListOf constructs a list-of-kind type.
func ListOf(k Kind) Type { return Type{Kind: k, IsList: true} }

// RecordType constructs a record type by name.
func RecordType(name string) Type { return Type{Kind: Record, RecordName: name} }

// ListOfRecord constructs a list of a named record type.
func ListOfRecord(name string) Type { return Type{Kind: Record, IsList: true, RecordName: name} }

var (
	TInt    = Scalar(Int)
	TUInt   = Scalar(UInt)
	TDouble = Scalar(Double)
	TChar   = Scalar(Char)
	TBool   = Scalar(Bool)
	TVoid   = Scalar(Void)
	TString = Scalar(String)
	TInvalid = Scalar(Invalid)

	// AnyList is a sentinel parameter type used only by stdlib declarations
	// that are polymorphic over the list's element kind (spec §6's
	// `list_length(list)`, which the runtime implements once for every list
	// shape). It never appears as an expression's real type; analyzer
	// argument-checking special-cases it to accept any IsList==true type.
	AnyList = Type{Kind: Invalid, IsList: true}
)

// IsAnyList reports whether t is the AnyList wildcard parameter type.
func IsAnyList(t Type) bool { return t.Kind == Invalid && t.IsList }

// String renders a type as its kind name, with "[]" appended for a list and
// the record name in place of the kind for a record, e.g. "Int", "Int[]",
// "Pt". Used by the pretty-printer (-p) and in diagnostic text.
func (t Type) String() string {
	name := t.Kind.String()
	if t.Kind == Record {
		name = t.RecordName
	}
	if t.IsList {
		return name + "[]"
	}
	return name
}

// Equal reports whether two types denote the same value shape: same kind,
// same list-ness, and (for records) the same record name.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind || a.IsList != b.IsList {
		return false
	}
	if a.Kind == Record {
		return a.RecordName == b.RecordName
	}
	return true
}

// edge is one directed arc of the promotion order, given verbatim by spec
// §4.1. The order is defined only between types sharing IsList, so edges
// are keyed purely on Kind; String is modeled as a non-list scalar kind in
// its own right (its runtime representation as a list<char> handle is an
// emitter-level storage detail, not a type-lattice one — see DESIGN.md for
// the resolution of the promotion-lattice Open Question).
type edge struct{ from, to Kind }

var directEdges = []edge{
	{Int, Double},
	{UInt, Double},
	{Char, Int},
	{Bool, Int},
	{Bool, UInt},
	{Bool, Double},
	{Int, String},
	{UInt, String},
	{Double, String},
}

// reachable[k] is the set of kinds strictly greater than k, i.e. the
// transitive closure of directEdges. The source table lists only direct
// edges (e.g. Char < Int, Int < Double); arithmetic between Char and Double
// needs the derived Char < Double fact, so the order is treated as a DAG and
// closed transitively rather than read as a flat list of pairs. Per §9's
// instruction not to "fix" the asymmetric relation into a total order, no
// edges beyond the transitive closure of the stated ones are added (e.g.
// Char and Bool remain incomparable, since no edge or chain connects them).
var reachable map[Kind]map[Kind]bool

func init() {
	adj := map[Kind][]Kind{}
	for _, e := range directEdges {
		adj[e.from] = append(adj[e.from], e.to)
	}
	reachable = map[Kind]map[Kind]bool{}
	var visit func(Kind) map[Kind]bool
	visiting := map[Kind]bool{}
	visit = func(k Kind) map[Kind]bool {
		if r, ok := reachable[k]; ok {
			return r
		}
		if visiting[k] {
			return map[Kind]bool{}
		}
		visiting[k] = true
		r := map[Kind]bool{}
		for _, next := range adj[k] {
			r[next] = true
			for nk := range visit(next) {
				r[nk] = true
			}
		}
		visiting[k] = false
		reachable[k] = r
		return r
	}
	for k := Invalid; k <= Record; k++ {
		visit(k)
	}
}

// Less reports whether a is strictly promotable to b (a < b), scalar-kind
// only, and only when a.IsList == b.IsList (lists are never promoted to
// other lists: a list of Int is never < a list of Double, even though the
// element kinds are).
func Less(a, b Type) bool {
	if a.IsList != b.IsList {
		return false
	}
	if a.Kind == Record || b.Kind == Record {
		return false
	}
	return reachable[a.Kind][b.Kind]
}

// LessEqual is the non-strict promotion order, `a <= b`: `a < b` or `a = b`.
func LessEqual(a, b Type) bool {
	return Equal(a, b) || Less(a, b)
}

// Larger returns the greater of a and b under the promotion order, or
// Invalid if the two are incomparable (including any pair that disagrees on
// IsList, or where neither is <= the other).
func Larger(a, b Type) Type {
	if LessEqual(a, b) {
		return b
	}
	if LessEqual(b, a) {
		return a
	}
	return TInvalid
}

// Assignable reports whether a value of type s may be assigned/passed to a
// binding of type t, and whether doing so is a strict up-cast (s < t,
// meaning a non-fatal warning is due) as opposed to an identity assignment.
//
// Per the Open Question on the String edges of the promotion order: the
// literal table says Int/UInt/Double < String, which would make this
// function return (true, true) for e.g. (Int, String) and let an implicit
// numeric-to-string conversion through. Decision (recorded in DESIGN.md):
// that edge is preserved in the promotion DAG (Larger/Less still see it, so
// e.g. a binary op mixing an Int and a String literal still resolves to a
// larger-type of String rather than silently erroring as incomparable) but
// is rejected at assignment time, since no runtime function in §6 can
// perform that coercion and the emitter's coercion table does not attempt
// one. Assignable is the one place that special case is carved out.
func Assignable(s, t Type) (ok bool, warn bool) {
	if Equal(s, t) {
		return true, false
	}
	if !Less(s, t) {
		return false, false
	}
	if t.Kind == String && s.Kind != String {
		return false, false
	}
	return true, true
}
