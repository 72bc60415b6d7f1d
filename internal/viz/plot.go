package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	plotHeight = 12
	plotWidth  = 80
)

// FitPlot renders the observed and predicted series as an overlaid terminal
// graph.
func FitPlot(observed, predicted []float64, caption string) string {
	return asciigraph.PlotMany(
		[][]float64{observed, predicted},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Gray, asciigraph.Cyan),
		asciigraph.SeriesLegends("observed", "predicted"),
	)
}

// ResidualPlot renders the fit residual.
func ResidualPlot(residual []float64) string {
	return asciigraph.Plot(residual,
		asciigraph.Height(plotHeight/2),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("residual"),
	)
}

// UnitSummary renders one fitted unit's estimate as a styled panel.
func UnitSummary(unit int, params []float64, rsq, betaSlope, betaIntercept float64, converged bool) string {
	var b strings.Builder

	b.WriteString(Title.Render(fmt.Sprintf("unit %d", unit)))
	b.WriteString("\n")
	if len(params) == 4 {
		b.WriteString(fmt.Sprintf("%s %s\n",
			Label.Render("center:"),
			Value.Render(fmt.Sprintf("(%.3f, %.3f) deg", params[0], params[1]))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			Label.Render("sigma: "),
			Value.Render(fmt.Sprintf("%.3f deg", params[2]))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			Label.Render("tau:   "),
			Value.Render(fmt.Sprintf("%.3f s", params[3]))))
	}
	b.WriteString(fmt.Sprintf("%s %s\n",
		Label.Render("r2:    "),
		Value.Render(fmt.Sprintf("%.4f", rsq))))
	b.WriteString(fmt.Sprintf("%s %s\n",
		Label.Render("beta:  "),
		Value.Render(fmt.Sprintf("%.4f x + %.4f", betaSlope, betaIntercept))))

	status := Good.Render("converged")
	if !converged {
		status = Bad.Render("not converged")
	}
	b.WriteString(status)

	return Panel.Render(b.String())
}
