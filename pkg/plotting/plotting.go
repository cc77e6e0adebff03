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

package plotting

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultFontSize   = 18
	DefaultFontFamily = "monospace"
	DefaultColorMap   = "kindlmann"
)

var families = map[string]font.Variant{
	"monospace":  "Mono",
	"mono":       "Mono",
	"serif":      "Serif",
	"sans-serif": "Sans",
	"sans":       "Sans",
}

var colorMaps = map[string]func() palette.ColorMap{
	"blue_red":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"blue_tan":           func() palette.ColorMap { return moreland.SmoothBlueTan() },
	"green_purple":       func() palette.ColorMap { return moreland.SmoothGreenPurple() },
	"green_red":          func() palette.ColorMap { return moreland.SmoothGreenRed() },
	"purple_orange":      func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
	"blackbody":          moreland.BlackBody,
	"extended_blackbody": moreland.ExtendedBlackBody,
	"kindlmann":          moreland.Kindlmann,
	"extended_kindlmann": moreland.ExtendedKindlmann,
}

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	HelpFamilies  = strings.Join(keys(families), "|")
	HelpColorMaps = strings.Join(keys(colorMaps), "|")
)

// SetPlotStyle sets the font size (points) and family used by plots created afterwards.
func SetPlotStyle(size float64, family string) error {
	variant, ok := families[strings.ToLower(family)]
	if !ok {
		return ErrInvalidValue{What: "font family", Name: family, Help: "one of " + HelpFamilies}
	}
	if size <= 0 {
		return ErrInvalidValue{What: "font size", Name: fmt.Sprint(size), Help: "a positive number of points"}
	}
	plot.DefaultFont.Variant = variant
	plot.DefaultFont.Size = vg.Points(size)
	return nil
}

// ColorMap returns the named color map scaled to [0, 1].
func ColorMap(name string) (palette.ColorMap, error) {
	newMap, ok := colorMaps[strings.ToLower(name)]
	if !ok {
		return nil, ErrInvalidValue{What: "color map", Name: name, Help: "one of " + HelpColorMaps}
	}
	cm := newMap()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm, nil
}

// NewPlot returns a plot using the current style for its title and axes.
func NewPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font = font.From(plot.DefaultFont, plot.DefaultFont.Size)
	p.X.Label.TextStyle.Font = font.From(plot.DefaultFont, plot.DefaultFont.Size)
	p.X.Tick.Label.Font = font.From(plot.DefaultFont, plot.DefaultFont.Size*2/3)
	return p
}

// SaveColorBar renders the named color map as a horizontal color bar.
// The image format follows the extension of path.
func SaveColorBar(name, path string) error {
	cm, err := ColorMap(name)
	if err != nil {
		return err
	}
	p := NewPlot(name)
	p.HideY()
	p.Add(&plotter.ColorBar{ColorMap: cm})
	return p.Save(6*vg.Inch, 1.5*vg.Inch, path)
}

type ErrInvalidValue struct {
	What string
	Name string
	Help string
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("Invalid %s %q, expected %s", e.What, e.Name, e.Help)
}
