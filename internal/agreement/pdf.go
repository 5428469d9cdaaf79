// Package agreement renders the waste collection service agreement as a
// single fixed-layout PDF page. Generation is a pure function of its inputs
// and the injected clock; identical data produces identical bytes.
package agreement

import (
	"bytes"
	"encoding/base64"
	"strings"
	"time"

	"github.com/forPelevin/gomoji"
	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

// Data holds every field the agreement document displays.
type Data struct {
	PickupRequestID  string
	UserName         string
	CompanyName      string
	WasteType        string
	WasteDescription string
	Location         string
	PreferredDate    string
	PreferredTime    string
	UserSignature    string
	CompanySignature string
	CreatedAt        time.Time
}

var terms = []string{
	"1. The Service Provider agrees to collect the specified waste at the scheduled time and location.",
	"2. The Client agrees to have the waste properly prepared and accessible at the pickup location.",
	"3. Both parties agree to comply with all applicable waste management regulations.",
	"4. The Service Provider shall dispose of the waste in an environmentally responsible manner.",
	"5. Cancellation must be communicated at least 24 hours before the scheduled pickup.",
	"6. The Service Provider is not responsible for hazardous waste not disclosed by the Client.",
	"7. This agreement is valid for the specified pickup date only.",
	"8. Payment shall be processed through the Nexo Greencycle platform.",
}

// Generator produces agreement PDFs. Now stamps the document's creation
// date; it exists so tests can pin the only nondeterministic input.
type Generator struct {
	Now func() time.Time
}

// NewGenerator returns a Generator using the wall clock.
func NewGenerator() Generator {
	return Generator{Now: time.Now}
}

// FileName is the download name for a pickup's agreement document.
func FileName(pickupID string) string {
	return "agreement-" + shortRef(pickupID) + ".pdf"
}

func shortRef(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// clean strips emoji the built-in PDF fonts cannot render.
func clean(s string) string {
	return strings.TrimSpace(gomoji.RemoveEmojis(s))
}

// DataURI renders the agreement and returns it as an embeddable
// data:application/pdf;base64 URI.
func (g Generator) DataURI(d Data) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	if g.Now != nil {
		pdf.SetCreationDate(g.Now())
		pdf.SetModificationDate(g.Now())
	}
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	// Header banner
	pdf.SetFillColor(14, 28, 54)
	pdf.Rect(0, 0, pageW, 45, "F")
	pdf.SetFillColor(0, 163, 82)
	pdf.Rect(0, 40, pageW, 5, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(15, 20, "Nexo Greencycle")

	pdf.SetFontSize(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(15, 30, "Waste Collection Service Agreement")
	pdf.Text(pageW-60, 30, "Ref: "+strings.ToUpper(shortRef(d.PickupRequestID)))

	// Title
	y := 58.0
	pdf.SetTextColor(30, 30, 30)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(0, y-5)
	pdf.CellFormat(pageW, 10, "WASTE COLLECTION AGREEMENT", "", 0, "C", false, 0, "")

	y += 12
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(15, y, "Date: "+d.CreatedAt.Format("2 January 2006"))

	// Parties
	y += 12
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(15, y, "PARTIES:")
	y += 7
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, y, tr("1. Client (Waste Producer): "+clean(d.UserName)))
	y += 6
	pdf.Text(20, y, tr("2. Service Provider: "+clean(d.CompanyName)))

	// Service details
	y += 12
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(15, y, "SERVICE DETAILS:")
	y += 7

	description := d.WasteDescription
	if description == "" {
		description = "N/A"
	}
	details := [][2]string{
		{"Waste Type", d.WasteType},
		{"Description", description},
		{"Pickup Location", d.Location},
		{"Scheduled Date", d.PreferredDate},
		{"Preferred Time", d.PreferredTime},
	}
	for _, row := range details {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(20, y, row[0]+":")
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(65, y, tr(clean(row[1])))
		y += 7
	}

	// Terms
	y += 8
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(15, y, "TERMS AND CONDITIONS:")
	y += 7
	pdf.SetFont("Helvetica", "", 9)
	for _, term := range terms {
		for _, line := range pdf.SplitText(term, pageW-40) {
			pdf.Text(20, y, line)
			y += 5
		}
		y += 2
	}

	// Signature lines
	y += 10
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(15, y, "SIGNATURES:")
	y += 12

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, y+10, 90, y+10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(20, y+16, "Client Signature")
	if d.UserSignature != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(0, 100, 50)
		pdf.Text(25, y+7, tr(clean(d.UserSignature)))
		pdf.SetTextColor(30, 30, 30)
	}

	pdf.Line(120, y+10, 190, y+10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(120, y+16, "Company Signature")
	if d.CompanySignature != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(0, 100, 50)
		pdf.Text(125, y+7, tr(clean(d.CompanySignature)))
		pdf.SetTextColor(30, 30, 30)
	}

	// Footer band
	footerY := pageH - 15
	pdf.SetFillColor(0, 163, 82)
	pdf.Rect(0, footerY-5, pageW, 20, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(0, footerY)
	pdf.CellFormat(pageW, 6, tr("Nexo Greencycle - Smart Waste Management Platform - www.nexogreencycle.co.ke"), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", errors.Wrap(err, "render agreement pdf")
	}
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
