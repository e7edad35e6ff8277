package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"cotizador/internal/config"
	"cotizador/internal/http/handlers"
	"cotizador/internal/repos"
)

// client keeps cookies across requests against a fiber test app, the way a
// browser session would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newApp(t *testing.T, online bool) (*client, *handlers.Deps) {
	t.Helper()
	var db *sqlx.DB
	if online {
		d, err := repos.OpenDB(":memory:")
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		t.Cleanup(func() { _ = d.Close() })
		db = d
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("kaufmann"), bcrypt.MinCost)
	cfg := config.Config{
		MediaDir:       t.TempDir(),
		SupervisorHash: string(hash),
		CatalogTTL:     time.Minute,
	}
	deps := handlers.NewDeps(db, cfg)

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	app.Get("/", deps.Quote.Form)
	app.Post("/quote/details", deps.Quote.Details)
	app.Post("/quote/items", deps.Quote.SetItem)
	app.Post("/quote/manual", deps.Quote.Manual)
	app.Post("/quote/reset", deps.Quote.Reset)
	app.Post("/quote/finalize", deps.Quote.Finalize)
	app.Post("/catalog/items", deps.Catalog.SaveItem)
	app.Post("/supervisor", deps.Supervisor.Unlock)
	app.Get("/api/v1/catalog", deps.API.Items)

	return &client{t: t, app: app, cookies: map[string]string{}}, deps
}

func (cl *client) do(req *http.Request) *http.Response {
	cl.t.Helper()
	for k, v := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := cl.app.Test(req, -1)
	if err != nil {
		cl.t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c.Value
	}
	return resp
}

func (cl *client) get(path string) *http.Response {
	return cl.do(httptest.NewRequest("GET", path, nil))
}

func (cl *client) post(path string, form url.Values) *http.Response {
	cl.t.Helper()
	form.Set("csrf", cl.cookies["csrf_"])
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

const tableroTask = "Reparación circuito eléctrico tablero"

func TestQuoteFlowStandardView(t *testing.T) {
	cl, _ := newApp(t, true)

	resp := cl.get("/")
	if resp.StatusCode != 200 {
		t.Fatalf("form expected 200 got %d", resp.StatusCode)
	}
	if cl.cookies["csrf_"] == "" {
		t.Fatal("csrf token missing")
	}

	resp = cl.post("/quote/details", url.Values{
		"plate": {"hx-rp10"}, "model": {"SPRINTER"}, "client": {"hosp"},
		"status": {"En Espera de Aprobación"},
	})
	if resp.StatusCode != 302 {
		t.Fatalf("details expected redirect got %d", resp.StatusCode)
	}

	resp = cl.post("/quote/items", url.Values{"task": {tableroTask}, "qty": {"2"}})
	if resp.StatusCode != 302 {
		t.Fatalf("set item expected redirect got %d", resp.StatusCode)
	}

	// The form shows the cost-based summary: 2 x 189000 = 378000 net.
	resp = cl.get("/")
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	for _, want := range []string{"$378.000", "$71.820", "$449.820", "HXRP10"} {
		if !strings.Contains(page, want) {
			t.Fatalf("form missing %q", want)
		}
	}
	if strings.Contains(page, "Venta Neta") {
		t.Fatal("standard view must not show sale figures")
	}

	resp = cl.post("/quote/finalize", url.Values{})
	if resp.StatusCode != 200 {
		t.Fatalf("finalize expected 200 got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/pdf") {
		t.Fatalf("expected pdf content-type got %s", ct)
	}
	cd := resp.Header.Get("Content-Disposition")
	if !strings.Contains(cd, "Presupuesto_HXRP10_000000.pdf") {
		t.Fatalf("unexpected filename: %s", cd)
	}
	pdfBody, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(pdfBody), "%PDF-") {
		t.Fatal("response is not a pdf")
	}

	// Finalize consumed the draft.
	resp = cl.get("/")
	body, _ = io.ReadAll(resp.Body)
	if strings.Contains(string(body), "Resumen Final") {
		t.Fatal("draft should be reset after finalize")
	}
}

func TestSupervisorUnlockAndOfficialDocument(t *testing.T) {
	cl, _ := newApp(t, true)
	cl.get("/")

	resp := cl.post("/supervisor", url.Values{"password": {"wrong"}})
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "msg=badpass") {
		t.Fatalf("bad password should bounce, got %s", loc)
	}
	if cl.cookies["sup"] != "" {
		t.Fatal("no supervisor cookie on failure")
	}

	resp = cl.post("/supervisor", url.Values{"password": {"kaufmann"}})
	if resp.StatusCode != 302 || cl.cookies["sup"] == "" {
		t.Fatalf("unlock failed: %d", resp.StatusCode)
	}

	cl.post("/quote/details", url.Values{"plate": {"RBFR28"}, "model": {"SPRINTER"}, "client": {"ssas"}})
	cl.post("/quote/items", url.Values{"task": {tableroTask}, "qty": {"2"}})

	// Supervisor summary carries both cost and sale nets.
	resp = cl.get("/")
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "Venta Neta") || !strings.Contains(page, "$504.000") {
		t.Fatal("supervisor view missing sale figures")
	}
	if !strings.Contains(page, "$360.000") {
		t.Fatal("supervisor view missing cost net")
	}

	resp = cl.post("/quote/finalize", url.Values{})
	cd := resp.Header.Get("Content-Disposition")
	if !strings.Contains(cd, "Cotizacion_RBFR28_000000.pdf") {
		t.Fatalf("unexpected filename: %s", cd)
	}
}

func TestFinalizeLogsViewConsistentTotal(t *testing.T) {
	cl, deps := newApp(t, true)
	cl.get("/")
	cl.post("/supervisor", url.Values{"password": {"kaufmann"}})
	cl.post("/quote/details", url.Values{"plate": {"HXRP21"}, "model": {"SPRINTER"}, "client": {"hosp"}})
	cl.post("/quote/items", url.Values{"task": {tableroTask}, "qty": {"1"}})
	cl.post("/quote/finalize", url.Values{})

	recs, err := deps.Quote.Register.History.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("want 1 audit row, got %d", len(recs))
	}
	// Supervisor finalization logs the sale net, not the cost net.
	if recs[0].Amount != "$264.600" {
		t.Fatalf("logged amount %s, want $264.600", recs[0].Amount)
	}
	if recs[0].Seq != "000000" || recs[0].Plate != "HXRP21" {
		t.Fatalf("bad audit row: %+v", recs[0])
	}
}

func TestOfflineModeStillQuotes(t *testing.T) {
	cl, _ := newApp(t, false)
	cl.get("/")
	cl.post("/quote/details", url.Values{"plate": {"JTSK31"}, "model": {"SPRINTER"}, "client": {"gend"}})
	cl.post("/quote/items", url.Values{"task": {"Cambio de compresor A/C"}, "qty": {"1"}})

	resp := cl.get("/")
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "tarifario local") {
		t.Fatal("offline banner missing")
	}

	resp = cl.post("/quote/finalize", url.Values{})
	if resp.StatusCode != 200 {
		t.Fatalf("offline finalize expected 200 got %d", resp.StatusCode)
	}
	cd := resp.Header.Get("Content-Disposition")
	// No trustworthy sequence number offline, so none in the filename.
	if !strings.Contains(cd, "Presupuesto_JTSK31.pdf") {
		t.Fatalf("unexpected filename: %s", cd)
	}

	// Catalog writes fail soft.
	resp = cl.post("/supervisor", url.Values{"password": {"kaufmann"}})
	resp = cl.post("/catalog/items", url.Values{
		"category": {"Camilla"}, "task": {"Cambio correa de sujeción"}, "cost": {"50000"},
	})
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "msg=offline") {
		t.Fatalf("offline save should report offline, got %s", loc)
	}
}

func TestCatalogSaveRequiresSupervisor(t *testing.T) {
	cl, _ := newApp(t, true)
	cl.get("/")
	resp := cl.post("/catalog/items", url.Values{
		"category": {"Camilla"}, "task": {"Cambio correa de sujeción"}, "cost": {"50000"},
	})
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 got %d", resp.StatusCode)
	}
}

func TestCatalogAPI(t *testing.T) {
	cl, _ := newApp(t, true)
	cl.get("/")

	resp := cl.get("/api/v1/catalog?client=gend")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "Cambio de compresor A/C") {
		t.Fatal("gend-only task missing from API payload")
	}
	if strings.Contains(page, `"sale"`) {
		t.Fatal("standard view must not expose sale prices")
	}

	resp = cl.get("/api/v1/catalog?client=bogus")
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 got %d", resp.StatusCode)
	}
}

func TestManualItemFlow(t *testing.T) {
	cl, _ := newApp(t, true)
	cl.get("/")
	cl.post("/quote/details", url.Values{"plate": {"ZZ-ZZ99"}, "model": {"SPRINTER"}, "client": {"part"}})
	cl.post("/quote/manual", url.Values{"desc": {"Cambio de espejo lateral"}, "qty": {"2"}, "price": {"10000"}})

	resp := cl.get("/")
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "(Extra) Cambio de espejo lateral") {
		t.Fatal("manual line missing")
	}
	// Private customers see no catalog tabs.
	if strings.Contains(page, tableroTask) {
		t.Fatal("catalog items should be hidden for private customers")
	}
	if !strings.Contains(page, "$20.000") {
		t.Fatal("manual totals missing")
	}
}
