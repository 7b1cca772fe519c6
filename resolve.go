package main

// findType resolves a variable reference to its declared type. Parameters are
// searched first, then earlier statements in the same function for a local
// declaration of the name. The first declaration in list order wins; a later
// reassignment never changes a name's type.
func findType(name string, params []Param, priors []*Expression) (string, bool) {
	for _, p := range params {
		if p.Name == name {
			return p.TypeName, true
		}
	}
	for _, e := range priors {
		if e.Kind == ExprLocalAssign && e.Name == name {
			return e.TypeName, true
		}
	}
	return "", false
}
