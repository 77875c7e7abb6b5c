package gpu

// Names of the programs a context is expected to provide. Mesh programs are
// bound by drawables, the resolve program by the renderer itself.
const (
	ProgramMeshColor    = "mesh.color"
	ProgramMeshPick     = "mesh.pick"
	ProgramMeshDepth    = "mesh.depth"
	ProgramWboitResolve = "wboit.resolve"
)

// Values of the uWboitPass uniform: which accumulation output(s) a program
// writes while uRenderWboit is set.
const (
	WboitPassBoth int32 = iota
	WboitPassColor
	WboitPassWeight
)
