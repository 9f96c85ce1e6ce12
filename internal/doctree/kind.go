package doctree

// Kind is the category of a Node. The set of kinds is closed; use IsModuleOrNamespace rather than switching on specific kinds when asking whether a node can be renamed.
type Kind int

const (
	KindProject   Kind = iota // the root of a Project
	KindModule                // one Go package
	KindNamespace             // a container synthesized for an intermediate segment of a dotted module name
	KindType
	KindFunction
	KindMethod
	KindConstant
	KindVariable
)

var kindNames = map[Kind]string{
	KindProject:   "project",
	KindModule:    "module",
	KindNamespace: "namespace",
	KindType:      "type",
	KindFunction:  "function",
	KindMethod:    "method",
	KindConstant:  "constant",
	KindVariable:  "variable",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsModuleOrNamespace reports whether nodes of kind k are namespace-like (modules and synthesized namespaces). Only namespace-like nodes are eligible for renaming.
func (k Kind) IsModuleOrNamespace() bool {
	return k == KindModule || k == KindNamespace
}
