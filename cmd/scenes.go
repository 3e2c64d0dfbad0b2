package cmd

import (
	"io"
	"os"

	"github.com/df07/go-bdpt-renderer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the built-in scenes and the PBRT files in the scene directory.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	scenes, err := scene.ListAllScenes(ctx.String("scene-dir"))
	if err != nil {
		return err
	}
	writeSceneTable(os.Stdout, scenes)
	return nil
}

func writeSceneTable(w io.Writer, scenes []scene.SceneInfo) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Name", "Type", "Description"})
	for _, info := range scenes {
		table.Append([]string{info.ID, info.Name, info.Type, info.Description})
	}
	table.Render()
}
