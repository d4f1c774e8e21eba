package simbody

import "fmt"

/// Contract checks. A failed assertion is a programming error by the caller
/// (wrong equation count, stage accessed before realization, short buffer),
/// never a recoverable runtime condition.
func Assert(a bool) {
	if !a {
		panic("Assert")
	}
}

func AssertMsg(a bool, format string, args ...interface{}) {
	if !a {
		panic(fmt.Sprintf(format, args...))
	}
}

const Epsilon = 2.220446049250313e-16

/// Tolerance used when normalizing direction vectors supplied at
/// construction time.
const UnitVectorTolerance = 1.0e-10
