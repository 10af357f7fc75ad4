package diagram_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

func ExampleDiagram_MoveShape() {
	d := diagram.New(diagram.Options{ID: "example"})
	d.AddShape(diagram.Shape{ID: "a", Bounds: geom.R(0, 0, 100, 100)})
	d.AddShape(diagram.Shape{ID: "b", Bounds: geom.R(300, 200, 100, 100)})

	d.Subscribe(diagram.ListenerFunc(func(e diagram.Event) {
		if e.Repair != "" {
			fmt.Println(e.Type, e.Repair)
		}
	}))

	ctx := context.Background()
	c, _ := d.Connect(ctx, "a", "b", geom.Right, geom.Left)
	fmt.Println(c.Waypoints)

	changed, _ := d.MoveShape(ctx, "b", geom.Pt(0, 20))
	fmt.Println(changed[0].Waypoints)
	// Output:
	// [(100,50)@(50,50) (200,50) (200,250) (300,250)@(350,250)]
	// connection.changed adjusted
	// [(100,50)@(50,50) (200,50) (200,270) (300,270)@(350,270)]
}
