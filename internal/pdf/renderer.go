// Package pdf renders a finalized quote into the fixed-layout paginated
// document (official quotation or provider estimate).
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/image/draw"

	"cotizador/internal/correlative"
	"cotizador/internal/domain"
	"cotizador/internal/quote"
)

// Issuer identities. The supervisor view issues the official document in the
// dealer's name; the standard view issues the workshop's own estimate.
const (
	officialName = "KAUFMANN S.A."
	officialRUT  = "92.475.000-6"
	shopName     = "CHRISTIAN HERRERA"
	shopRUT      = "12.345.678-9"
	shopPhone    = "+56 9 1234 5678"
	shopEmail    = "c.h.servicioautomotriz@gmail.com"
	issuedAt     = "Padre las Casas"
)

// Photos wider than this are downscaled before embedding so attachments do
// not balloon the document.
const maxPhotoWidth = 900

type Renderer struct {
	MediaDir string
}

// Render produces the PDF for a finalized quote under the given view. The
// output is deterministic for identical inputs except the date stamp.
func (r *Renderer) Render(q domain.Quote, view domain.View) ([]byte, error) {
	official := view == domain.ViewSupervisor
	totals := quote.Totalize(q.Selections, view)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	logo := r.logoFor(q.Client)

	title := "PRESUPUESTO"
	if official {
		title = "COTIZACIÓN"
	}
	if !correlative.IsSentinel(q.Correlative) {
		title += " N° " + q.Correlative
	}

	pdf.SetHeaderFunc(func() {
		if logo != "" {
			pdf.ImageOptions(logo, 10, 8, 30, 0, false, gofpdf.ImageOptions{}, 0, "")
		}
		pdf.SetXY(45, 10)
		pdf.SetFont("Arial", "B", 16)
		if official {
			pdf.CellFormat(0, 10, officialName, "", 1, "L", false, 0, "")
			pdf.SetXY(45, 18)
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(0, 5, tr("Repuestos y Servicio Técnico Mercedes-Benz"), "", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(0, 10, shopName, "", 1, "L", false, 0, "")
			pdf.SetXY(45, 18)
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(0, 5, fmt.Sprintf("RUT: %s | %s", shopRUT, shopPhone), "", 1, "L", false, 0, "")
			pdf.SetXY(45, 23)
			pdf.CellFormat(0, 5, shopEmail, "", 1, "L", false, 0, "")
		}
		pdf.SetXY(130, 10)
		pdf.SetFont("Arial", "B", 14)
		pdf.SetTextColor(20, 20, 60)
		pdf.CellFormat(70, 10, tr(title), "1", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(130, 20)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(70, 8, "Fecha: "+time.Now().Format("02/01/2006"), "1", 1, "C", false, 0, "")
		pdf.Ln(20)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-30)
		pdf.SetFont("Arial", "I", 8)
		pdf.Line(10, 265, 200, 265)
		if official {
			pdf.CellFormat(0, 5, tr("Kaufmann S.A. - Líderes en Movilidad"), "", 1, "C", false, 0, "")
		} else {
			pdf.MultiCell(0, 5, tr("Validez oferta: 15 días. Garantía: 3 meses."), "", "C", false)
		}
	})

	pdf.AddPage()
	pdf.SetAutoPageBreak(true, 30)

	r.clientBlock(pdf, tr, q, official)
	r.vehicleBlock(pdf, tr, q)
	r.itemTable(pdf, tr, q.Selections, official)
	r.totalsBlock(pdf, totals)

	if q.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 6, "OBSERVACIONES / NOTAS:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(q.Notes), "", "L", false)
	}

	pdf.Ln(10)
	if !official {
		if sig := r.findImage("logo"); sig != "" {
			pdf.ImageOptions(sig, 75, pdf.GetY(), 60, 0, true, gofpdf.ImageOptions{}, 0, "")
		}
	}
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s, %s", issuedAt, time.Now().Format("02-01-2006"))), "", 1, "C", false, 0, "")
	signer := shopName
	if official {
		signer = officialName
	}
	pdf.Ln(5)
	pdf.CellFormat(0, 5, signer, "", 1, "C", false, 0, "")

	r.photoAppendix(pdf, tr, q.Photos)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) clientBlock(pdf *gofpdf.Fpdf, tr func(string) string, q domain.Quote, official bool) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, tr("IDENTIFICACIÓN DEL CLIENTE"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	// The official quotation bills the institution; the estimate bills the
	// dealer, with the end user shown separately.
	name, rut := officialName, officialRUT
	if official {
		name, rut = q.EndUser, "N/A"
	}
	pdf.CellFormat(20, 6, "NOMBRE:", "", 0, "L", false, 0, "")
	pdf.CellFormat(80, 6, tr(name), "", 0, "L", false, 0, "")
	pdf.CellFormat(15, 6, "RUT:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, rut, "", 1, "L", false, 0, "")
	if !official {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(30, 6, "USUARIO FINAL:", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, tr(q.EndUser), "", 1, "L", false, 0, "")
	} else {
		pdf.Ln(6)
	}
	pdf.Ln(2)
}

func (r *Renderer) vehicleBlock(pdf *gofpdf.Fpdf, tr func(string) string, q domain.Quote) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, tr("IDENTIFICACIÓN DEL MÓVIL"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(20, 6, "PATENTE:", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, q.Plate, "", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "MODELO:", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, tr(q.Model), "", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "ESTADO:", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(string(q.Status)), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (r *Renderer) itemTable(pdf *gofpdf.Fpdf, tr func(string) string, sels []domain.Selection, official bool) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(30, 45, 80)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(100, 8, tr("Descripción"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(15, 8, "Cant.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unitario", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 9)

	for _, s := range sels {
		unit, total := s.UnitCost, s.TotalCost
		if official {
			unit, total = s.UnitSale, s.TotalSale
		}
		// Long descriptions wrap; the numeric cells stretch to the wrapped
		// row height.
		x, y := pdf.GetXY()
		pdf.MultiCell(100, 6, tr(s.Task), "1", "L", false)
		h := pdf.GetY() - y
		pdf.SetXY(x+100, y)
		pdf.CellFormat(15, h, fmt.Sprintf("%d", s.Qty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, h, domain.FormatCLP(unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, h, domain.FormatCLP(total), "1", 0, "R", false, 0, "")
		pdf.SetXY(x, y+h)
	}
	pdf.Ln(5)
}

func (r *Renderer) totalsBlock(pdf *gofpdf.Fpdf, t quote.Totals) {
	pdf.SetX(125)
	pdf.CellFormat(35, 6, "Neto:", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, domain.FormatCLP(t.Net), "1", 1, "R", false, 0, "")
	pdf.SetX(125)
	pdf.CellFormat(35, 6, "IVA (19%):", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, domain.FormatCLP(t.Tax), "1", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.SetX(125)
	pdf.SetTextColor(20, 20, 60)
	pdf.CellFormat(35, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, domain.FormatCLP(t.Gross), "1", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (r *Renderer) photoAppendix(pdf *gofpdf.Fpdf, tr func(string) string, photos []domain.Photo) {
	first := true
	for i, p := range photos {
		jpg, w, h, err := downscale(p.Data)
		if err != nil {
			continue // undecodable attachments are skipped, not fatal
		}
		if first {
			pdf.AddPage()
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 8, tr("ANEXO FOTOGRÁFICO"), "", 1, "L", false, 0, "")
			pdf.Ln(4)
			first = false
		}
		name := fmt.Sprintf("photo-%d", i)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(jpg))
		// 120mm wide, height follows the aspect ratio.
		mmW := 120.0
		mmH := mmW * float64(h) / float64(w)
		if pdf.GetY()+mmH > 260 {
			pdf.AddPage()
		}
		pdf.ImageOptions(name, 45, pdf.GetY(), mmW, mmH, true, gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		pdf.Ln(6)
	}
}

// downscale decodes an uploaded photo, caps its width and re-encodes as
// JPEG. Returns the encoded bytes and final pixel dimensions.
func downscale(data []byte) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxPhotoWidth {
		nh := h * maxPhotoWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxPhotoWidth, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img, w, h = dst, maxPhotoWidth, nh
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), w, h, nil
}

// logoFor picks the header watermark by client kind; private customers get
// a plain document.
func (r *Renderer) logoFor(k domain.ClientKind) string {
	switch k {
	case domain.ClientGend:
		return r.findImage("gendarmeria")
	case domain.ClientSSAS, domain.ClientHosp:
		return r.findImage("ambulancia")
	}
	return ""
}

// findImage resolves an optional media file by base name, trying the usual
// extensions. Missing files are fine; blocks that need them are skipped.
func (r *Renderer) findImage(base string) string {
	for _, ext := range []string{".jpg", ".png", ".jpeg", ".JPG", ".PNG"} {
		p := filepath.Join(r.MediaDir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
