/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package plot

import (
	"fmt"

	"github.com/spf13/cobra"

	"naluscientific.com/go-nalu/pkg/plotting"
)

const (
	FontSizeOptionName   = "font-size"
	FontFamilyOptionName = "font-family"
	ColorMapOptionName   = "cmap"
	OutputOptionName     = "output"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plotting helpers",
	}
	cmd.AddCommand(newColorBarCommand())
	return cmd
}

func newColorBarCommand() *cobra.Command {
	var fontSize float64
	var fontFamily, cmap, output string
	cmd := &cobra.Command{
		Use:   "colorbar",
		Short: "Render a color map as a color bar image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := plotting.SetPlotStyle(fontSize, fontFamily); err != nil {
				return err
			}
			if err := plotting.SaveColorBar(cmap, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Color map %s written to %s\n", cmap, output)
			return nil
		},
	}
	cmd.Flags().Float64Var(&fontSize, FontSizeOptionName, plotting.DefaultFontSize, "Font size in points")
	cmd.Flags().StringVar(&fontFamily, FontFamilyOptionName, plotting.DefaultFontFamily,
		fmt.Sprintf("Font family. One of: %s", plotting.HelpFamilies))
	cmd.Flags().StringVar(&cmap, ColorMapOptionName, plotting.DefaultColorMap,
		fmt.Sprintf("Color map. One of: %s", plotting.HelpColorMaps))
	cmd.Flags().StringVarP(&output, OutputOptionName, "o", "colorbar.png", "Image file, the format follows the extension")
	return cmd
}
