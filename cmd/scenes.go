package cmd

import (
	"bytes"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListScenes prints the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Primitives", "Materials", "Description"})
	for _, info := range scene.List() {
		sc, err := scene.ByName(info.Name)
		if err != nil {
			return err
		}
		table.Append([]string{
			info.Name,
			fmt.Sprintf("%d", len(sc.Primitives())),
			fmt.Sprintf("%d", len(sc.Materials())),
			info.Description,
		})
	}
	table.Render()

	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}
