package handlers

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cotizador/internal/domain"
	"cotizador/internal/log"
)

// Gate grants the supervisor view against a passphrase. Tokens live in
// memory on purpose: unlocking must keep working when the shared store is
// down, and a restart simply re-locks everyone.
type Gate struct {
	Hash string // bcrypt hash of the passphrase

	mu     sync.Mutex
	tokens map[string]time.Time
}

const supCookie = "sup"
const supTTL = 8 * time.Hour

func NewGate(hash string) *Gate {
	return &Gate{Hash: hash, tokens: map[string]time.Time{}}
}

func (g *Gate) Unlock(pass string) (string, bool) {
	if bcrypt.CompareHashAndPassword([]byte(g.Hash), []byte(pass)) != nil {
		return "", false
	}
	tok := uuid.NewString()
	g.mu.Lock()
	g.tokens[tok] = time.Now().Add(supTTL)
	g.mu.Unlock()
	return tok, true
}

func (g *Gate) Lock(tok string) {
	g.mu.Lock()
	delete(g.tokens, tok)
	g.mu.Unlock()
}

func (g *Gate) valid(tok string) bool {
	if tok == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	exp, ok := g.tokens[tok]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(g.tokens, tok)
		return false
	}
	return true
}

// View resolves the access level for a request. Exactly one view applies;
// they never mix within a response.
func (g *Gate) View(c *fiber.Ctx) domain.View {
	if g.valid(c.Cookies(supCookie)) {
		return domain.ViewSupervisor
	}
	return domain.ViewStandard
}

type SupervisorHandler struct {
	Gate *Gate
}

func (h *SupervisorHandler) Unlock(c *fiber.Ctx) error {
	tok, ok := h.Gate.Unlock(c.FormValue("password"))
	if !ok {
		log.Security(c, "supervisor.unlock.fail", nil)
		return c.Redirect("/?msg=badpass")
	}
	c.Cookie(&fiber.Cookie{
		Name:     supCookie,
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(supTTL),
	})
	log.Audit(c, "supervisor.unlock", nil)
	return c.Redirect("/")
}

func (h *SupervisorHandler) Lock(c *fiber.Ctx) error {
	h.Gate.Lock(c.Cookies(supCookie))
	c.Cookie(&fiber.Cookie{
		Name:     supCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	log.Audit(c, "supervisor.lock", nil)
	return c.Redirect("/")
}
