package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin = 7.62 // 0.3in in mm

	// Grid cell geometry, matching the Word layout.
	cellWidth  = 84.582 // 3.33in
	cellHeight = 71.628 // 2.82in

	outerBorderWidth = 2.1 // 6pt
	photoBorderWidth = 1.6 // 4.5pt
)

// RenderPDF produces the evidence grid as an A4 PDF with the same
// geometry as the Word layout.
func RenderPDF(header Header, items []Item) (Document, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	writeHeader(pdf, header)

	pageWidth, _ := pdf.GetPageSize()
	gridWidth := cellWidth * PhotosPerRow
	left := (pageWidth - gridWidth) / 2
	top := pdf.GetY() + 2

	rows := Rows(items)
	for rowIdx, row := range rows {
		y := top + float64(rowIdx)*cellHeight
		for colIdx := 0; colIdx < PhotosPerRow; colIdx++ {
			x := left + float64(colIdx)*cellWidth
			pdf.SetLineWidth(0.3)
			pdf.Rect(x, y, cellWidth, cellHeight, "D")
			if colIdx < len(row) {
				drawPhoto(pdf, row[colIdx], rowIdx*PhotosPerRow+colIdx, x, y)
			}
		}
	}

	// Outer border around the whole grid.
	pdf.SetLineWidth(outerBorderWidth)
	pdf.Rect(left, top, gridWidth, cellHeight*float64(len(rows)), "D")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render pdf: %w", err)
	}
	return Document{
		Filename:    fmt.Sprintf("Evidence_Report_%s.pdf", header.BatchID),
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

// RenderAttendancePDF produces the attendance sheet as its own PDF, one
// full-width photo per page section.
func RenderAttendancePDF(header Header, items []Item) (Document, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	writeHeader(pdf, header)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Attendance Sheet", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pageWidth, pageHeight := pdf.GetPageSize()
	imgWidth := pageWidth - 2*pdfMargin
	imgHeight := imgWidth * 3 / 4

	for i, item := range items {
		if pdf.GetY()+imgHeight > pageHeight-pdfMargin {
			pdf.AddPage()
		}
		if len(item.Data) > 0 {
			name := fmt.Sprintf("attendance-%d", i)
			registerImage(pdf, name, item)
			pdf.SetLineWidth(photoBorderWidth)
			pdf.Rect(pdfMargin, pdf.GetY(), imgWidth, imgHeight, "D")
			pdf.ImageOptions(name, pdfMargin, pdf.GetY(), imgWidth, imgHeight, true, gofpdf.ImageOptions{}, 0, "")
		} else {
			// Download failed, print the delivery URL as a link instead.
			pdf.SetFont("Arial", "U", 10)
			pdf.SetTextColor(0, 0, 200)
			pdf.WriteLinkString(6, item.URL, item.URL)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(8)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render attendance pdf: %w", err)
	}
	return Document{
		Filename:    fmt.Sprintf("Attendance_%s.pdf", header.BatchID),
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

func writeHeader(pdf *gofpdf.Fpdf, header Header) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, "Name of the Skill Hub: "+header.SkillHub, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, "Batch ID: "+header.BatchID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Job Role: "+header.JobRole, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

// drawPhoto places the item's photo centered in its cell with the thick
// photo border. Items without bytes get their URL printed instead.
func drawPhoto(pdf *gofpdf.Fpdf, item Item, index int, cellX, cellY float64) {
	const pad = 4.0
	imgW := cellWidth - 2*pad
	imgH := cellHeight - 2*pad
	x := cellX + pad
	y := cellY + pad

	if len(item.Data) == 0 {
		pdf.SetFont("Arial", "", 8)
		pdf.SetXY(x, y+imgH/2)
		pdf.MultiCell(imgW, 4, item.URL, "", "C", false)
		return
	}

	name := fmt.Sprintf("grid-%d", index)
	registerImage(pdf, name, item)
	pdf.SetLineWidth(photoBorderWidth)
	pdf.Rect(x, y, imgW, imgH, "D")
	pdf.ImageOptions(name, x, y, imgW, imgH, false, gofpdf.ImageOptions{}, 0, "")
}

func registerImage(pdf *gofpdf.Fpdf, name string, item Item) {
	imageType := "JPG"
	if strings.Contains(item.ContentType, "png") {
		imageType = "PNG"
	}
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(item.Data))
}
