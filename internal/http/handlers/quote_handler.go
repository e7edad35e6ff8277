package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cotizador/internal/catalog"
	"cotizador/internal/correlative"
	"cotizador/internal/domain"
	"cotizador/internal/log"
	"cotizador/internal/pdf"
	"cotizador/internal/quote"
	"cotizador/internal/validate"
)

var categoryEmoji = map[string]string{
	"Luces y Exterior": "💡", "Carrocería y Vidrios": "🚐", "Interior Sanitario": "🏥",
	"Climatización y Aire": "❄️", "Asientos y Tapiz": "💺", "Equipamiento y Radio": "📻",
	"Cabina y Tablero": "📟", "Camilla": "🚑", "Seguridad y Calabozos": "🔒",
}

type QuoteHandler struct {
	Drafts   *quote.Store
	Catalog  *catalog.Service
	Register *correlative.Register
	PDF      *pdf.Renderer
	Gate     *Gate
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

type itemVM struct {
	Task string
	Qty  int
	Cost string
	Sale string
}

type categoryVM struct {
	Name  string
	Emoji string
	Items []itemVM
}

type lineVM struct {
	Task      string
	Qty       int
	Unit      string
	Total     string
	UnitSale  string
	TotalSale string
}

// Form renders the quoting page for the current session.
func (h *QuoteHandler) Form(c *fiber.Ctx) error {
	sid := ensureSID(c)
	view := h.Gate.View(c)
	d := h.Drafts.Snapshot(sid)
	items, src := h.Catalog.Load()

	if src != catalog.SourceRemote {
		log.Degraded(c, "catalog.load."+src.String(), nil)
	}

	var cats []categoryVM
	if d.Client != domain.ClientPrivate {
		qtyByTask := map[string]int{}
		for _, s := range d.Selections {
			if !s.Manual {
				qtyByTask[s.Task] = s.Qty
			}
		}
		for _, name := range catalog.Categories(items) {
			cv := categoryVM{Name: name, Emoji: categoryEmoji[name]}
			for _, li := range items {
				if li.Category != name || !li.OfferedTo(d.Client) {
					continue
				}
				cost, sale := li.Price(d.Client)
				iv := itemVM{Task: li.Task, Qty: qtyByTask[li.Task], Cost: domain.FormatCLP(cost)}
				if view == domain.ViewSupervisor {
					iv.Sale = domain.FormatCLP(sale)
				}
				cv.Items = append(cv.Items, iv)
			}
			if len(cv.Items) > 0 {
				cats = append(cats, cv)
			}
		}
	}

	var lines []lineVM
	for _, s := range d.Selections {
		lv := lineVM{
			Task: s.Task, Qty: s.Qty,
			Unit: domain.FormatCLP(s.UnitCost), Total: domain.FormatCLP(s.TotalCost),
		}
		if view == domain.ViewSupervisor {
			lv.UnitSale = domain.FormatCLP(s.UnitSale)
			lv.TotalSale = domain.FormatCLP(s.TotalSale)
		}
		lines = append(lines, lv)
	}
	t := quote.Totalize(d.Selections, view)

	endUser := d.EndUser
	if endUser == "" {
		endUser = domain.SuggestEndUser(d.Plate, d.Client)
	}

	data := fiber.Map{
		"Plate":      d.Plate,
		"Model":      d.Model,
		"Client":     d.Client.Code(),
		"Clients":    clientOptions(),
		"EndUser":    endUser,
		"Notes":      d.Notes,
		"Status":     string(d.Status),
		"Categories": cats,
		"Lines":      lines,
		"HasLines":   len(lines) > 0,
		"CostNet":    domain.FormatCLP(t.CostNet),
		"SaleNet":    domain.FormatCLP(t.SaleNet),
		"Net":        domain.FormatCLP(t.Net),
		"Tax":        domain.FormatCLP(t.Tax),
		"Gross":      domain.FormatCLP(t.Gross),
		"Supervisor": view == domain.ViewSupervisor,
		"Offline":    src == catalog.SourceFallback,
		"Msg":        c.Query("msg"),
	}
	return render(c, "quote", data)
}

type clientOption struct{ Code, Label string }

func clientOptions() []clientOption {
	kinds := []domain.ClientKind{domain.ClientSSAS, domain.ClientHosp, domain.ClientGend, domain.ClientPrivate}
	out := make([]clientOption, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, clientOption{Code: k.Code(), Label: k.Label()})
	}
	return out
}

// Details updates the vehicle/client block. Switching the client kind drops
// the selections, since every line is priced per tier.
func (h *QuoteHandler) Details(c *fiber.Ctx) error {
	sid := ensureSID(c)
	kind, okKind := domain.KindFromCode(c.FormValue("client"))

	h.Drafts.Update(sid, func(d *quote.Draft) {
		if okKind {
			d.SwitchClient(kind)
		}
		if p, ok := validate.Plate(c.FormValue("plate")); ok {
			d.Plate = p
		} else {
			d.Plate = ""
		}
		if m, ok := validate.Name(c.FormValue("model")); ok {
			d.Model = m
		}
		if u, ok := validate.Name(c.FormValue("enduser")); ok {
			d.EndUser = u
		} else {
			d.EndUser = ""
		}
		d.Notes = validate.Notes(c.FormValue("notes"))
		if c.FormValue("status") == string(domain.StatusDone) {
			d.Status = domain.StatusDone
		} else {
			d.Status = domain.StatusPending
		}
	})
	return c.Redirect("/")
}

// SetItem sets the quantity for one catalog task. Quantity 0 removes it.
func (h *QuoteHandler) SetItem(c *fiber.Ctx) error {
	sid := ensureSID(c)
	qty, ok := validate.Qty(c.FormValue("qty"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}
	task := c.FormValue("task")

	items, _ := h.Catalog.Load()
	var found bool
	h.Drafts.Update(sid, func(d *quote.Draft) {
		// Prices resolve server-side from the catalog; the form only names
		// the task.
		li, ok := catalog.Find(items, d.Client, task)
		if !ok {
			return
		}
		found = true
		d.SetSelection(li, qty)
	})
	if !found {
		log.Security(c, "quote.item.unknown", map[string]any{"task": task})
		return c.Status(fiber.StatusBadRequest).SendString("unknown task for this client")
	}
	return c.Redirect("/")
}

// Manual appends an ad-hoc line item with a typed-in unit price.
func (h *QuoteHandler) Manual(c *fiber.Ctx) error {
	sid := ensureSID(c)
	desc, okD := validate.Desc(c.FormValue("desc"))
	qty, okQ := validate.Qty(c.FormValue("qty"))
	price, okP := validate.Money(c.FormValue("price"))
	if !okD || !okQ || qty == 0 || !okP {
		log.Security(c, "validation.fail", map[string]any{"field": "manual"})
		return c.Redirect("/?msg=badmanual")
	}
	h.Drafts.Update(sid, func(d *quote.Draft) { d.AddManual(desc, qty, price) })
	return c.Redirect("/")
}

// Photos attaches an uploaded image to the draft. Decoding problems are
// detected at render time; here we only cap count and size.
func (h *QuoteHandler) Photos(c *fiber.Ctx) error {
	sid := ensureSID(c)
	fh, err := c.FormFile("photo")
	if err != nil {
		return c.Redirect("/?msg=nophoto")
	}
	f, err := fh.Open()
	if err != nil {
		return c.Redirect("/?msg=nophoto")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, 4<<20))
	if err != nil {
		return c.Redirect("/?msg=nophoto")
	}

	full := false
	h.Drafts.Update(sid, func(d *quote.Draft) {
		if len(d.Photos) >= 6 {
			full = true
			return
		}
		d.Photos = append(d.Photos, domain.Photo{Name: fh.Filename, Data: data})
	})
	if full {
		return c.Redirect("/?msg=photolimit")
	}
	return c.Redirect("/")
}

func (h *QuoteHandler) Reset(c *fiber.Ctx) error {
	h.Drafts.Reset(ensureSID(c))
	return c.Redirect("/")
}

// Finalize assigns the correlative, renders the document and returns it as
// a download. The draft is consumed: a fresh session starts afterwards.
func (h *QuoteHandler) Finalize(c *fiber.Ctx) error {
	sid := ensureSID(c)
	view := h.Gate.View(c)
	d := h.Drafts.Snapshot(sid)

	plate, ok := validate.Plate(d.Plate)
	if !ok {
		return c.Redirect("/?msg=noplate")
	}
	if len(d.Selections) == 0 {
		return c.Redirect("/?msg=noitems")
	}

	// The logged amount must match the view that issued the document.
	t := quote.Totalize(d.Selections, view)
	seq := h.Register.Assign(plate, d.Client, t.Net)
	if correlative.IsSentinel(seq) {
		log.Degraded(c, "correlative.assign."+seq, nil)
	}

	var q domain.Quote
	var ferr error
	h.Drafts.Update(sid, func(dr *quote.Draft) { q, ferr = dr.Finalize(seq) })
	if ferr != nil {
		return c.Redirect("/?msg=finalized")
	}
	if q.EndUser == "" {
		q.EndUser = domain.SuggestEndUser(q.Plate, q.Client)
	}

	out, err := h.PDF.Render(q, view)
	if err != nil {
		log.Error(c, "quote.render.fail", err, map[string]any{"quote_id": q.ID})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
			"Message": "No se pudo generar el documento. Intente nuevamente.",
		})
	}
	h.Drafts.Reset(sid)

	log.Audit(c, "quote.finalize", map[string]any{
		"quote_id": q.ID, "plate": plate, "client": q.Client.Code(),
		"seq": seq, "net": t.Net, "gross": t.Gross,
		"official": view == domain.ViewSupervisor,
	})

	name := "Presupuesto_" + plate
	if view == domain.ViewSupervisor {
		name = "Cotizacion_" + plate
	}
	if !correlative.IsSentinel(seq) {
		name += "_" + seq
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".pdf"))
	return c.Send(out)
}
