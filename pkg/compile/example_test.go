package compile_test

import (
	"fmt"

	"github.com/sunstflower/modelsee/pkg/compile"
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

func ExampleRun() {
	g := graph.New()
	g.AddNode(graph.Node{ID: "hidden", Type: "dense", Config: map[string]any{"units": 128, "activation": "relu"}})
	g.AddNode(graph.Node{ID: "out", Type: "dense", Config: map[string]any{"units": 10, "activation": "softmax"}})
	g.AddEdge("hidden", "out")

	result, err := compile.Run(g, compile.Options{
		InputShape: shape.Of(-1, 784),
		Framework:  "tensorflow",
		ModelName:  "mlp",
	})
	if err != nil {
		fmt.Println("compile:", err)
		return
	}

	fmt.Println("sequence:", result.Sequence)
	fmt.Println("errors:", result.Diagnostics.ErrorCount())
	fmt.Println("generated:", result.Code != nil)
	// Output:
	// sequence: [hidden out]
	// errors: 0
	// generated: true
}
