// Package pdf renders completion certificates. The Renderer interface is
// the seam the certificate service consumes; production uses the gofpdf
// implementation.
package pdf

import (
	"bytes"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData is everything printed on a certificate.
type CertificateData struct {
	CertificateID string
	StudentName   string
	CourseTitle   string
	SiteName      string
	IssuedAt      time.Time
}

type Renderer interface {
	RenderCertificate(data CertificateData) ([]byte, error)
}

// GofpdfRenderer draws a landscape A4 certificate.
type GofpdfRenderer struct{}

func NewRenderer() *GofpdfRenderer {
	return &GofpdfRenderer{}
}

func (r *GofpdfRenderer) RenderCertificate(data CertificateData) ([]byte, error) {
	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetTitle("Certificate of Completion", false)
	doc.AddPage()

	w, h := doc.GetPageSize()

	// Border
	doc.SetLineWidth(1.2)
	doc.SetDrawColor(60, 60, 120)
	doc.Rect(8, 8, w-16, h-16, "D")
	doc.SetLineWidth(0.4)
	doc.Rect(11, 11, w-22, h-22, "D")

	doc.SetFont("Helvetica", "", 14)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(0, 30)
	doc.CellFormat(w, 10, data.SiteName, "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "B", 34)
	doc.SetTextColor(40, 40, 90)
	doc.SetXY(0, 48)
	doc.CellFormat(w, 16, "Certificate of Completion", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 14)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(0, 72)
	doc.CellFormat(w, 8, "This certifies that", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "B", 26)
	doc.SetTextColor(20, 20, 20)
	doc.SetXY(0, 84)
	doc.CellFormat(w, 14, data.StudentName, "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 14)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(0, 102)
	doc.CellFormat(w, 8, "has successfully completed the course", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(40, 40, 90)
	doc.SetXY(0, 114)
	doc.CellFormat(w, 12, data.CourseTitle, "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(90, 90, 90)
	doc.SetXY(0, 134)
	doc.CellFormat(w, 8, data.IssuedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(150, 150, 150)
	doc.SetXY(0, h-26)
	doc.CellFormat(w, 6, "Verification ID: "+data.CertificateID, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
