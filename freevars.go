package fdlc

import "sort"

// FreeVars returns the identifiers referenced by e but not bound
// within it, as a sorted (lexicographic) slice — deterministic
// capture order is required so the site that allocates a closure and
// the site that restores its captures in the prologue agree on field
// order (spec §4.3, §9 "free-variable order").
func FreeVars(e Expr) []string {
	set := map[string]struct{}{}
	collectFreeVars(e, set)
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func collectFreeVars(e Expr, set map[string]struct{}) {
	switch n := e.(type) {
	case Number, Boolean:
		// no identifiers

	case Id:
		set[n.Name] = struct{}{}

	case Let:
		collectFreeVars(n.Rhs, set)
		body := map[string]struct{}{}
		collectFreeVars(n.Body, body)
		delete(body, n.Bind)
		for id := range body {
			set[id] = struct{}{}
		}

	case If:
		collectFreeVars(n.Cond, set)
		collectFreeVars(n.Then, set)
		collectFreeVars(n.Else, set)

	case Prim1:
		collectFreeVars(n.Arg, set)

	case Prim2:
		collectFreeVars(n.Left, set)
		collectFreeVars(n.Right, set)

	case Tuple:
		for _, it := range n.Items {
			collectFreeVars(it, set)
		}

	case GetItem:
		collectFreeVars(n.Tup, set)
		collectFreeVars(n.Index, set)

	case Lam:
		body := map[string]struct{}{}
		collectFreeVars(n.Body, body)
		bound := map[string]struct{}{}
		for _, p := range n.Params {
			bound[p] = struct{}{}
		}
		for id := range body {
			if _, ok := bound[id]; !ok {
				set[id] = struct{}{}
			}
		}

	case Fun:
		body := map[string]struct{}{}
		collectFreeVars(n.Body, body)
		bound := map[string]struct{}{n.Name: {}}
		for _, p := range n.Params {
			bound[p] = struct{}{}
		}
		for id := range body {
			if _, ok := bound[id]; !ok {
				set[id] = struct{}{}
			}
		}

	case App:
		collectFreeVars(n.Callee, set)
		for _, a := range n.Args {
			collectFreeVars(a, set)
		}

	default:
		panic("FreeVars: unhandled node type")
	}
}
