// Package export writes detection records to an xlsx report.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/xuri/excelize/v2"

	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/utils"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// ErrNoData is returned when no record matches the query.
var ErrNoData = errors.New("export: no records in range")

const (
	// firstDataRow is the 1-based row of the first record; the rows above
	// hold the summary and the column headers.
	firstDataRow = 8
	headerRow    = firstDataRow - 1

	thumbMaxWidth  = 210
	thumbMaxHeight = 150

	allLabels = "All Labels"
	mixed     = "Mixed"
)

var columns = []struct {
	name  string
	width float64
}{
	{"No", 5},
	{"Image", 30},
	{"Label", 20},
	{"Date/Time", 25},
	{"Standard", 10},
	{"Status", 10},
	{"Image Path", 40},
	{"Target Session", 20},
}

// Source lists records in a time range.
type Source interface {
	Range(ctx context.Context, from, to time.Time) ([]store.Record, error)
}

// Query selects the records of a report. Zero Family and empty Label match
// everything.
type Query struct {
	From   time.Time
	To     time.Time
	Family vocab.Family
	Label  string
}

// Day returns the query covering the calendar day of t.
func Day(t time.Time) Query {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Query{From: start, To: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}

// Description is the date line of the report header.
func (q Query) Description() string {
	from, to := q.From.Format(time.DateOnly), q.To.Format(time.DateOnly)
	if from == to {
		return from
	}
	return from + " - " + to
}

func (q Query) keep(r store.Record) bool {
	if q.Family != vocab.FamilyNone && r.Preset != string(q.Family) {
		return false
	}
	return q.Label == "" || r.TargetSession == q.Label
}

// ProgressFunc receives coarse progress updates.
type ProgressFunc func(done, total int, message string)

// Exporter writes reports into a directory.
type Exporter struct {
	dir      string
	logger   *slog.Logger
	progress ProgressFunc
	now      func() time.Time
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithProgress reports progress to fn.
func WithProgress(fn ProgressFunc) Option { return func(e *Exporter) { e.progress = fn } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Exporter) { e.logger = l } }

// WithNow replaces the clock used for file and sheet names.
func WithNow(now func() time.Time) Option { return func(e *Exporter) { e.now = now } }

// New returns an exporter writing into dir.
func New(dir string, opts ...Option) *Exporter {
	e := &Exporter{dir: dir, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// FileName returns the report name for t.
func FileName(t time.Time) string {
	return "Karton_Report_" + t.Format("20060102_150405") + ".xlsx"
}

func (e *Exporter) report(done, total int, msg string) {
	if e.progress != nil {
		e.progress(done, total, msg)
	}
}

// Export loads the records selected by q from src and writes a report. It
// returns the path of the written file.
func (e *Exporter) Export(ctx context.Context, src Source, q Query) (string, error) {
	e.report(0, 100, "loading records")
	all, err := src.Range(ctx, q.From, q.To)
	if err != nil {
		return "", fmt.Errorf("export: load records: %w", err)
	}
	var recs []store.Record
	for _, r := range all {
		if q.keep(r) {
			recs = append(recs, r)
		}
	}
	if len(recs) == 0 {
		e.report(100, 100, "no data")
		return "", ErrNoData
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(e.dir, FileName(e.now()))
	if err := e.Write(ctx, path, recs, q); err != nil {
		return "", err
	}
	e.logger.Info("report exported", "path", path, "records", len(recs))
	return path, nil
}

// Write renders recs into a workbook at path. A cancelled ctx aborts the
// export and removes nothing but the unsaved workbook.
func (e *Exporter) Write(ctx context.Context, path string, recs []store.Record, q Query) error {
	if len(recs) == 0 {
		return ErrNoData
	}
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	sheet := e.now().Format(time.DateOnly)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("export: styles: %w", err)
	}
	if err := writeSummary(f, sheet, st, recs, q); err != nil {
		return fmt.Errorf("export: summary: %w", err)
	}
	if err := writeHeader(f, sheet, st); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}

	for i, r := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i%10 == 0 || i == len(recs)-1 {
			e.report(10+i*80/len(recs), 100, fmt.Sprintf("row %d of %d", i+1, len(recs)))
		}
		if err := e.writeRow(f, sheet, st, firstDataRow+i, i+1, r); err != nil {
			return fmt.Errorf("export: row %d: %w", i+1, err)
		}
	}

	e.report(90, 100, "saving workbook")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save: %w", err)
	}
	e.report(100, 100, "done")
	return nil
}

type styles struct {
	info, header     int
	cell, cellTime   int
	notOK, notOKTime int
}

func newStyles(f *excelize.File) (styles, error) {
	timeFmt := "yyyy-mm-dd hh:mm:ss"
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	red := excelize.Fill{Type: "pattern", Color: []string{"FF0000"}, Pattern: 1}
	white := &excelize.Font{Color: "FFFFFF"}

	defs := []*excelize.Style{
		{Font: &excelize.Font{Bold: true, Size: 11}, Alignment: &excelize.Alignment{Horizontal: "left"}},
		{Font: &excelize.Font{Bold: true, Color: "FFFFFF"}, Alignment: center,
			Fill: excelize.Fill{Type: "pattern", Color: []string{"596CDA"}, Pattern: 1}},
		{Alignment: center, Border: border},
		{Alignment: center, Border: border, CustomNumFmt: &timeFmt},
		{Alignment: center, Border: border, Fill: red, Font: white},
		{Alignment: center, Border: border, Fill: red, Font: white, CustomNumFmt: &timeFmt},
	}
	ids := make([]int, len(defs))
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return styles{}, err
		}
		ids[i] = id
	}
	return styles{info: ids[0], header: ids[1], cell: ids[2], cellTime: ids[3], notOK: ids[4], notOKTime: ids[5]}, nil
}

// dominantPreset returns the only preset of recs, the most frequent one, or
// "Mixed" when recs carry none.
func dominantPreset(recs []store.Record) string {
	counts := make(map[string]int)
	best, bestN := mixed, 0
	for _, r := range recs {
		if r.Preset == "" {
			continue
		}
		counts[r.Preset]++
		if n := counts[r.Preset]; n > bestN {
			best, bestN = r.Preset, n
		}
	}
	return best
}

func writeSummary(f *excelize.File, sheet string, st styles, recs []store.Record, q Query) error {
	preset := string(q.Family)
	if preset == "" {
		preset = dominantPreset(recs)
	}
	label := q.Label
	if label == "" {
		label = allLabels
	}
	var ok, notOK int
	for _, r := range recs {
		switch r.Status {
		case store.StatusOK:
			ok++
		case store.StatusNotOK:
			notOK++
		}
	}
	lines := []string{
		"Date : " + q.Description(),
		"Type : " + preset,
		"Label : " + label,
		fmt.Sprintf("OK : %d", ok),
		fmt.Sprintf("Not OK : %d", notOK),
		fmt.Sprintf("QTY Actual : %d", len(recs)),
	}
	for i, line := range lines {
		a, b := fmt.Sprintf("A%d", i+1), fmt.Sprintf("B%d", i+1)
		if err := f.MergeCell(sheet, a, b); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, a, line); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, a, b, st.info); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, st styles) error {
	for i, c := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, c.width); err != nil {
			return err
		}
		cell := fmt.Sprintf("%s%d", col, headerRow)
		if err := f.SetCellValue(sheet, cell, c.name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return err
		}
	}
	// path and target are kept for re-imports but hidden from readers
	return f.SetColVisible(sheet, "G:H", false)
}

func (e *Exporter) writeRow(f *excelize.File, sheet string, st styles, row, no int, r store.Record) error {
	cellStyle, timeStyle := st.cell, st.cellTime
	if r.Status == store.StatusNotOK {
		cellStyle, timeStyle = st.notOK, st.notOKTime
	}
	values := []any{no, "", r.Code, r.Timestamp, r.Preset, r.Status, r.ImagePath, r.TargetSession}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		style := cellStyle
		if i == 3 {
			style = timeStyle
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	if r.ImagePath == "" {
		return nil
	}
	thumb, height, err := thumbnail(r.ImagePath, r.Code)
	if err != nil {
		e.logger.Warn("skipping thumbnail", "path", r.ImagePath, "error", err)
		return nil
	}
	// row heights are in points, thumbnails in pixels
	if err := f.SetRowHeight(sheet, row, float64(height)*0.75); err != nil {
		return err
	}
	cell, _ := excelize.CoordinatesToCellName(2, row)
	return f.AddPictureFromBytes(sheet, cell, &excelize.Picture{
		Extension: ".png",
		File:      thumb,
		Format:    &excelize.GraphicOptions{OffsetX: 5, OffsetY: 2, Positioning: "oneCell"},
	})
}

// thumbnail renders the evidence image captioned with the code, fitted into
// the image column.
func thumbnail(path, code string) ([]byte, int, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, 0, err
	}
	canvas := utils.ToRGBA(img)
	b := canvas.Bounds()
	utils.DrawLabel(canvas, b.Min.X+10, b.Max.Y-10, "Detected: "+code,
		color.RGBA{R: 255, G: 255, A: 255}, color.RGBA{A: 255})
	small := imaging.Fit(canvas, thumbMaxWidth, thumbMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, small); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), small.Bounds().Dy(), nil
}
