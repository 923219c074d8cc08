// Package dossier renders the downloadable filing dossier: a zip archive of
// the uploaded Form-16 plus generated summary, heatmap, and certificate PDFs.
// It is pure formatting with no state.
package dossier

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"

	"github.com/go-pdf/fpdf"
)

// SummaryField is one labelled line on the summary page. Fields render in the
// order given, so callers control presentation order explicitly.
type SummaryField struct {
	Label string
	Value string
}

// Build assembles the dossier archive. The certificate page always carries the
// owner display name and the commitment identifier as visible text.
func Build(form16 []byte, summary []SummaryField, fullName, commitmentID string, riskFlags map[string]string) ([]byte, error) {
	summaryPDF, err := summaryPage(summary)
	if err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	heatmapPDF, err := heatmapPage(riskFlags)
	if err != nil {
		return nil, fmt.Errorf("render heatmap: %w", err)
	}
	certificatePDF, err := certificatePage(fullName, commitmentID)
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []struct {
		name string
		data []byte
	}{
		{"form16.pdf", form16},
		{"summary.pdf", summaryPDF},
		{"heatmap.pdf", heatmapPDF},
		{"certificate.pdf", certificatePDF},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func newPage() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "Letter", "")
	// Keep content streams uncompressed so rendered text stays byte-searchable.
	pdf.SetCompression(false)
	pdf.AddPage()
	return pdf
}

func summaryPage(fields []SummaryField) ([]byte, error) {
	pdf := newPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 100, "Filing Summary")
	y := 130.0
	for _, f := range fields {
		pdf.Text(72, y, fmt.Sprintf("%s: %s", f.Label, f.Value))
		y += 22
		if y > 720 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 12)
			y = 100
		}
	}
	return output(pdf)
}

func heatmapPage(riskFlags map[string]string) ([]byte, error) {
	pdf := newPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 100, "Risk Heatmap")

	if len(riskFlags) == 0 {
		pdf.Text(72, 130, "No risk flags recorded")
		return output(pdf)
	}

	names := make([]string, 0, len(riskFlags))
	for name := range riskFlags {
		names = append(names, name)
	}
	sort.Strings(names)

	y := 130.0
	for _, name := range names {
		label := riskFlags[name]
		if label == "yellow" {
			pdf.SetFillColor(255, 221, 87)
		} else {
			pdf.SetFillColor(120, 200, 120)
		}
		pdf.Rect(72, y-10, 12, 12, "F")
		pdf.Text(92, y, fmt.Sprintf("%s: %s", name, label))
		y += 22
	}
	return output(pdf)
}

func certificatePage(fullName, commitmentID string) ([]byte, error) {
	pdf := newPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(72, 300, "Certificate of Filing")
	pdf.Text(72, 340, fullName)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 370, commitmentID)
	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
