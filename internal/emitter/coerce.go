package emitter

import (
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	ctypes "github.com/ainfosec/crema/internal/types"
)

// coerce implements spec §4.4's coercion table: Int/UInt -> Double via
// signed-int-to-float, Char -> Int via sign-extend, Bool -> Int/UInt/Double
// via zero-extend (then int-to-float for the Double case). Char -> Double is
// not a direct row in §4.4's table, but §4.1's promotion lattice makes
// Char < Int < Double transitively, so the analyzer accepts it (with an
// up-cast warning) and the emitter must have a matching coercion — composed
// here as the same sign-extend used for Char -> Int followed by the same
// int-to-float used for Int -> Double. Any other non-identity from-to pair
// is an internal emitter error, since the analyzer should have already
// rejected it (the same "internal (emitter)" diagnostic class spec §7
// reserves for "a bug, not a user error").
func (s *State) coerce(v value.Value, from, to ctypes.Type) (value.Value, error) {
	if ctypes.Equal(from, to) || from.IsList || to.IsList {
		return v, nil
	}
	switch {
	case (from.Kind == ctypes.Int || from.Kind == ctypes.UInt) && to.Kind == ctypes.Double:
		return s.cur().NewSIToFP(v, types.Double), nil
	case from.Kind == ctypes.Char && to.Kind == ctypes.Int:
		return s.cur().NewSExt(v, types.I64), nil
	case from.Kind == ctypes.Char && to.Kind == ctypes.UInt:
		return s.cur().NewZExt(v, types.I64), nil
	case from.Kind == ctypes.Bool && (to.Kind == ctypes.Int || to.Kind == ctypes.UInt):
		return s.cur().NewZExt(v, types.I64), nil
	case from.Kind == ctypes.Bool && to.Kind == ctypes.Double:
		asInt := s.cur().NewZExt(v, types.I64)
		return s.cur().NewSIToFP(asInt, types.Double), nil
	case from.Kind == ctypes.Char && to.Kind == ctypes.Double:
		asInt := s.cur().NewSExt(v, types.I64)
		return s.cur().NewSIToFP(asInt, types.Double), nil
	default:
		return nil, internalf("emitter: unsupported coercion from %s to %s", from, to)
	}
}
