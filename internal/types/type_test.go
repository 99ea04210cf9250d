package types

import "testing"

func TestLessDirectEdges(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"int < double", TInt, TDouble, true},
		{"uint < double", TUInt, TDouble, true},
		{"char < int", TChar, TInt, true},
		{"bool < int", TBool, TInt, true},
		{"bool < uint", TBool, TUInt, true},
		{"bool < double", TBool, TDouble, true},
		{"double !< int", TDouble, TInt, false},
		{"int !< uint", TInt, TUInt, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Less(tc.a, tc.b); got != tc.want {
				t.Errorf("Less(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestLessTransitiveClosure(t *testing.T) {
	if !Less(TChar, TDouble) {
		t.Errorf("expected Char < Double via Char < Int < Double")
	}
	if !Less(TBool, TDouble) {
		t.Errorf("expected Bool < Double via Bool < Int < Double")
	}
	if Less(TChar, TBool) {
		t.Errorf("Char and Bool are unrelated in the source table; no chain should connect them")
	}
}

func TestListsNeverPromoteAcrossListness(t *testing.T) {
	if Less(TInt, ListOf(Double)) {
		t.Errorf("a scalar must never be < a list, regardless of element kind")
	}
	if Less(ListOf(Int), TDouble) {
		t.Errorf("a list must never be < a scalar")
	}
}

func TestAntisymmetric(t *testing.T) {
	pairs := []Type{TInt, TUInt, TDouble, TChar, TBool, TVoid, TString, ListOf(Int), ListOf(Double)}
	for _, a := range pairs {
		for _, b := range pairs {
			if LessEqual(a, b) && LessEqual(b, a) && !Equal(a, b) {
				t.Errorf("antisymmetry violated: %v <= %v <= %v but not equal", a, b, a)
			}
		}
	}
}

func TestLarger(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want Type
	}{
		{"int,double", TInt, TDouble, TDouble},
		{"double,int", TDouble, TInt, TDouble},
		{"bool,int", TBool, TInt, TInt},
		{"int,uint incomparable", TInt, TUInt, TInvalid},
		{"equal", TInt, TInt, TInt},
		{"char,double transitive", TChar, TDouble, TDouble},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Larger(tc.a, tc.b); !Equal(got, tc.want) {
				t.Errorf("Larger(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestAssignableNumericToStringRejected(t *testing.T) {
	for _, s := range []Type{TInt, TUInt, TDouble} {
		ok, warn := Assignable(s, TString)
		if ok {
			t.Errorf("Assignable(%v, String) = ok, want rejected (see Open Question decision in DESIGN.md)", s)
		}
		_ = warn
	}
}

func TestAssignableUpCastWarns(t *testing.T) {
	ok, warn := Assignable(TInt, TDouble)
	if !ok || !warn {
		t.Errorf("Assignable(Int, Double) = (%v, %v), want (true, true)", ok, warn)
	}
	ok, warn = Assignable(TInt, TInt)
	if !ok || warn {
		t.Errorf("Assignable(Int, Int) = (%v, %v), want (true, false)", ok, warn)
	}
}

func TestAssignableNarrowingRejected(t *testing.T) {
	ok, _ := Assignable(TDouble, TInt)
	if ok {
		t.Errorf("Assignable(Double, Int) should be rejected: narrowing")
	}
}

func TestRecordEquality(t *testing.T) {
	a := RecordType("Pt")
	b := RecordType("Pt")
	c := RecordType("Rect")
	if !Equal(a, b) {
		t.Errorf("same-named records should be equal")
	}
	if Equal(a, c) {
		t.Errorf("differently-named records should not be equal")
	}
	if Less(a, c) || Less(c, a) {
		t.Errorf("records are never comparable under promotion")
	}
}
