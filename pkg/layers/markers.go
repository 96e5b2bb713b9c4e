package layers

import "github.com/sunstflower/modelsee/pkg/graph"

// Marker node types: canvas pins that carry no layer semantics. The
// validator skips them and the code generator emits nothing for them, but
// they must still resolve through the registry so unknown tags stay a hard
// error.

func init() {
	Register(&Descriptor{
		Type:     "input",
		Category: CategoryUtility,
		Doc:      "Model input marker",
		Defaults: graph.Config{},
		Marker:   true,
	})
	Register(&Descriptor{
		Type:     "output",
		Category: CategoryUtility,
		Doc:      "Model output marker",
		Defaults: graph.Config{},
		Marker:   true,
	})
}
