package fdlc

// CountVars computes the maximum number of simultaneously live
// let-bindings in e, used to size the callee's local area in the
// prologue (spec §4.4, §4.8).
func CountVars(e Expr) int {
	switch n := e.(type) {
	case Let:
		rhs := CountVars(n.Rhs)
		body := 1 + CountVars(n.Body)
		if rhs > body {
			return rhs
		}
		return body

	case If:
		// the test is immediate; it contributes 0
		t, f := CountVars(n.Then), CountVars(n.Else)
		if t > f {
			return t
		}
		return f

	default:
		return 0
	}
}
