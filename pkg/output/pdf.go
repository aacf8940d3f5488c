package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/esop-forecast/internal/forecast"
	"github.com/iwvelando/esop-forecast/pkg/format"
)

const (
	pdfPageWidth    = 297.0
	pdfMarginLeft   = 10.0
	pdfMarginRight  = 10.0
	pdfMarginTop    = 12.0
	pdfMarginBottom = 12.0
	pdfContentWidth = pdfPageWidth - pdfMarginLeft - pdfMarginRight
	pdfChartHeight  = 70.0
)

var pdfColumnWidths = []float64{26, 30, 34, 36, 36, 30, 42, 43}

// Series colours
var (
	colorWithoutExercise = [3]int{108, 122, 137}
	colorWithExercise    = [3]int{62, 108, 153}
	colorHeading         = [3]int{46, 59, 78}
)

// pdfText converts UTF-8 text to something the core PDF fonts can render.
// The rupee sign has no Latin-1 code point.
func pdfText(s string) string {
	return strings.ReplaceAll(s, format.RupeeSymbol, "Rs ")
}

type pdfReport struct {
	pdf *fpdf.Fpdf
	f   forecast.Forecast
}

// PDFReport renders the forecast as a single landscape page: summary,
// a chart of both tax lines up to the selected valuation, the detailed
// metrics and the full breakdown table.
func PDFReport(f forecast.Forecast) ([]byte, error) {
	r := &pdfReport{
		pdf: fpdf.New("L", "mm", "A4", ""),
		f:   f,
	}
	r.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	r.pdf.SetAutoPageBreak(true, pdfMarginBottom)
	r.pdf.SetTitle("ESOP Tax Impact Simulator", true)

	r.pdf.AddPage()
	r.addHeader()
	r.addChartAndMetrics()
	r.addBreakdown()

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfReport) setTextColor(c [3]int) {
	r.pdf.SetTextColor(c[0], c[1], c[2])
}

func (r *pdfReport) sectionHeader(title string, width float64) {
	r.pdf.SetFont("Helvetica", "B", 13)
	r.setTextColor(colorHeading)
	r.pdf.CellFormat(width, 8, pdfText(title), "", 1, "L", false, 0, "")
}

func (r *pdfReport) addHeader() {
	r.pdf.SetFont("Helvetica", "B", 20)
	r.setTextColor(colorHeading)
	r.pdf.CellFormat(pdfContentWidth, 12, "ESOP Tax Impact Simulator", "", 1, "L", false, 0, "")

	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.CellFormat(pdfContentWidth, 6, pdfText(strings.Join(Summary(r.f), "   |   ")), "", 1, "L", false, 0, "")
	r.pdf.Ln(3)
}

func (r *pdfReport) addChartAndMetrics() {
	chartWidth := pdfContentWidth * 2 / 3
	top := r.pdf.GetY()

	r.sectionHeader("Tax Liability Comparison Across Valuation Scenarios", chartWidth)
	r.drawChart(pdfMarginLeft, r.pdf.GetY()+2, chartWidth-10, pdfChartHeight)

	metricsX := pdfMarginLeft + chartWidth
	metricsWidth := pdfContentWidth - chartWidth
	r.pdf.SetXY(metricsX, top)
	r.sectionHeader("Detailed Metrics at Selected Valuation", metricsWidth)

	group := ""
	for _, m := range Metrics(r.f) {
		if m.Group != group {
			group = m.Group
			r.pdf.SetX(metricsX)
			r.pdf.SetFont("Helvetica", "B", 10)
			r.setTextColor(colorHeading)
			r.pdf.CellFormat(metricsWidth, 7, pdfText(group), "", 1, "L", false, 0, "")
		}
		r.pdf.SetX(metricsX)
		r.pdf.SetFont("Helvetica", "", 10)
		r.pdf.SetTextColor(50, 50, 50)
		r.pdf.CellFormat(metricsWidth/2, 6, pdfText(m.Label), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(metricsWidth/2, 6, pdfText(m.Value), "", 1, "R", false, 0, "")
	}

	r.pdf.SetY(top + pdfChartHeight + 22)
}

func (r *pdfReport) drawChart(x, y, w, h float64) {
	rows := r.f.Visible
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.Rect(x, y, w, h, "D")
	if len(rows) == 0 {
		return
	}

	lo, hi := int64(0), int64(0)
	for _, s := range rows {
		for _, v := range []int64{s.TaxWithoutExercise, s.TotalTaxWithExercise} {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	span := len(rows) - 1
	if span < 1 {
		span = 1
	}
	px := func(i int) float64 { return x + 8 + float64(i)*(w-16)/float64(span) }
	py := func(v int64) float64 { return y + h - 8 - float64(v-lo)*(h-16)/float64(hi-lo) }

	series := []struct {
		color [3]int
		value func(forecast.Scenario) int64
		label string
	}{
		{colorWithoutExercise, func(s forecast.Scenario) int64 { return s.TaxWithoutExercise }, "Without Early Exercise"},
		{colorWithExercise, func(s forecast.Scenario) int64 { return s.TotalTaxWithExercise }, "With Early Exercise"},
	}

	r.pdf.SetFont("Helvetica", "", 7)
	for n, s := range series {
		r.pdf.SetDrawColor(s.color[0], s.color[1], s.color[2])
		r.pdf.SetFillColor(s.color[0], s.color[1], s.color[2])
		r.setTextColor(s.color)
		r.pdf.SetLineWidth(0.5)
		for i, row := range rows {
			cx, cy := px(i), py(s.value(row))
			if i > 0 {
				r.pdf.Line(px(i-1), py(s.value(rows[i-1])), cx, cy)
			}
			r.pdf.Circle(cx, cy, 0.8, "F")
			offset := -2.5
			if n == 1 {
				offset = 3.5
			}
			r.pdf.Text(cx-1.5, cy+offset, format.NumericLakhs(s.value(row)))
		}
		r.pdf.Text(x+4+float64(n)*45, y+h+5, s.label)
	}
	r.pdf.SetLineWidth(0.2)

	r.pdf.SetTextColor(80, 80, 80)
	for i, row := range rows {
		r.pdf.Text(px(i)-2, y+h-2, pdfText(fmt.Sprintf("%dB", row.Multiple)))
	}
}

func (r *pdfReport) addBreakdown() {
	r.sectionHeader("Tax Scenario Breakdown Across All Valuations", pdfContentWidth)

	r.pdf.SetFillColor(colorHeading[0], colorHeading[1], colorHeading[2])
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Helvetica", "B", 9)
	for i, col := range Columns {
		r.pdf.CellFormat(pdfColumnWidths[i], 7, col, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetTextColor(50, 50, 50)
	for _, s := range r.f.Table {
		if s.Multiple == r.f.Selected {
			r.pdf.SetFont("Helvetica", "B", 9)
			r.pdf.SetFillColor(235, 240, 248)
		} else {
			r.pdf.SetFont("Helvetica", "", 9)
			r.pdf.SetFillColor(255, 255, 255)
		}
		for i, cell := range cells(s) {
			align := "R"
			if i == 0 {
				align = "C"
			}
			r.pdf.CellFormat(pdfColumnWidths[i], 6, pdfText(cell), "1", 0, align, true, 0, "")
		}
		r.pdf.Ln(-1)
	}
}
