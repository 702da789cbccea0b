package handler

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	contactdomain "lighthouse-restaurant/backend/internal/contact/domain"
	contentdomain "lighthouse-restaurant/backend/internal/content/domain"
	"lighthouse-restaurant/backend/internal/media/storage"
	menudomain "lighthouse-restaurant/backend/internal/menu/domain"
	"lighthouse-restaurant/backend/internal/platform/rbac"
	"lighthouse-restaurant/backend/internal/server/web"
	sessiondomain "lighthouse-restaurant/backend/internal/session/domain"
)

func TestGate_AnonymousGoesToLogin(t *testing.T) {
	f := newFixture(t)
	f.session = nil

	for _, target := range []string{"/admin", "/admin/products", "/admin/settings"} {
		w := f.get(target)
		assert.Equal(t, http.StatusFound, w.Code, target)
		assert.Equal(t, rbac.LoginPath, w.Header().Get("Location"), target)
	}
	w := f.post("/admin/products/delete/p1", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, rbac.LoginPath, w.Header().Get("Location"))
}

func TestGate_NonAdminGoesHome(t *testing.T) {
	f := newFixture(t)
	f.session = &sessiondomain.Session{
		ID:        "s",
		Snapshot:  &sessiondomain.Snapshot{UserID: "staff-1"},
		ExpiresAt: time.Now().Add(time.Hour),
	}

	w := f.get("/admin")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, rbac.HomePath, w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: rbac.NoticeNoPermission}}, flashes(w))
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.products.items["p1"] = menudomain.Product{ID: "p1", Name: "Ceviche"}
	f.categories.items["c1"] = menudomain.Category{ID: "c1", Name: "Entradas"}
	f.contacts.items = []contactdomain.Message{
		{ID: "m1", Name: "Ana", Email: "ana@example.com", Subject: "Reserva"},
		{ID: "m2", Name: "Luis", Email: "luis@example.com", Read: true},
	}
	f.audit.recent = []*auditdomain.AuditLog{{Action: auditdomain.ActionLoginSuccess, Resource: "session", IP: "203.0.113.9"}}

	w := f.get("/admin")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<strong>1</strong> Productos")
	assert.Contains(t, body, "<strong>2</strong> Mensajes (1 sin leer)")
	assert.Contains(t, body, "Reserva")
	assert.Contains(t, body, "203.0.113.9")
}

func TestDashboard_StoreErrorStillRenders(t *testing.T) {
	f := newFixture(t)
	f.contacts.err = errors.New("db down")

	w := f.get("/admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Error al cargar el panel de administración")
}

func TestDashboardAlias(t *testing.T) {
	f := newFixture(t)
	w := f.get("/admin/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestContacts_ListAndMarkRead(t *testing.T) {
	f := newFixture(t)
	f.contacts.items = []contactdomain.Message{{ID: "m1", Name: "Ana", Email: "ana@example.com", Body: "Mesa para 4"}}

	w := f.get("/admin/contacts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mesa para 4")
	assert.Contains(t, w.Body.String(), `action="/admin/contacts/m1/read"`)

	w = f.post("/admin/contacts/m1/read", url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/contacts", w.Header().Get("Location"))
	assert.True(t, f.contacts.items[0].Read)
	assert.Equal(t, []auditEvent{{userID: "admin-1", action: auditdomain.ActionUpdate, resource: "contact", id: "m1"}}, f.audit.events)

	w = f.post("/admin/contacts/missing/read", url.Values{})
	assert.Equal(t, web.FlashError, flashes(w)[0].Kind)
}

func TestSettings_FormAndSave(t *testing.T) {
	f := newFixture(t)
	f.media.objects[storage.FolderHero] = []storage.Object{{URL: "https://cdn.test/hero/1_mar.jpg", DisplayName: "mar"}}

	w := f.get("/admin/settings")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://cdn.test/hero/1_mar.jpg")

	w = f.post("/admin/settings/save", url.Values{
		"hero_title":     {" Bienvenidos "},
		"hero_image_url": {"https://cdn.test/hero/1_mar.jpg"},
		"schedule_json":  {`{"Lunes":"12:00 - 22:00"}`},
		"footer_html":    {"<p>Faro</p>"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/settings", w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: "Ajustes guardados"}}, flashes(w))
	require.NotNil(t, f.settings.s)
	assert.Equal(t, "Bienvenidos", f.settings.s.HeroTitle)
	assert.Equal(t, "<p>Faro</p>", f.settings.s.FooterHTML)
}

func TestSettings_RejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	w := f.post("/admin/settings/save", url.Values{"schedule_json": {`["Lunes"]`}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, web.FlashError, flashes(w)[0].Kind)
	assert.Nil(t, f.settings.s)
}

func TestSettings_SaveFailure(t *testing.T) {
	f := newFixture(t)
	f.settings.err = errors.New("db down")
	w := f.post("/admin/settings/save", url.Values{"hero_title": {"x"}})
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: "Error al guardar ajustes"}}, flashes(w))
}

func TestPages_CRUD(t *testing.T) {
	f := newFixture(t)

	w := f.post("/admin/pages/save", url.Values{
		"title": {"Eventos"}, "slug": {"Eventos Privados"}, "status": {"published"}, "content_html": {"<p>Hola</p>"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/pages", w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: "Página creada exitosamente"}}, flashes(w))
	p := f.pages.items["new-id"]
	assert.Equal(t, "eventos-privados", p.Slug)
	assert.Equal(t, contentdomain.StatusPublished, p.Status)

	w = f.get("/admin/pages/edit/new-id")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="eventos-privados"`)

	w = f.post("/admin/pages/save", url.Values{"id": {"new-id"}, "title": {"Eventos"}, "slug": {"eventos"}, "status": {"draft"}})
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: "Página actualizada exitosamente"}}, flashes(w))
	assert.Equal(t, contentdomain.StatusDraft, f.pages.items["new-id"].Status)

	w = f.post("/admin/pages/delete/new-id", url.Values{})
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: "Página eliminada exitosamente"}}, flashes(w))
	assert.Empty(t, f.pages.items)

	require.Len(t, f.audit.events, 3)
	assert.Equal(t, auditdomain.ActionCreate, f.audit.events[0].action)
	assert.Equal(t, auditdomain.ActionUpdate, f.audit.events[1].action)
	assert.Equal(t, auditdomain.ActionDelete, f.audit.events[2].action)
}

func TestPages_Rejections(t *testing.T) {
	f := newFixture(t)
	f.pages.items["p1"] = contentdomain.Page{ID: "p1", Slug: "eventos", Title: "Eventos", Status: contentdomain.StatusDraft}

	w := f.post("/admin/pages/save", url.Values{"title": {"Sin slug"}})
	assert.Equal(t, "/admin/pages/add", w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: "Slug y Título son requeridos"}}, flashes(w))

	w = f.post("/admin/pages/save", url.Values{"title": {"Otra"}, "slug": {"eventos"}})
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: "Ya existe una página con ese slug"}}, flashes(w))

	w = f.post("/admin/pages/save", url.Values{"title": {"Otra"}, "slug": {"otra"}, "status": {"archived"}})
	assert.Equal(t, web.FlashError, flashes(w)[0].Kind)

	w = f.get("/admin/pages/edit/missing")
	assert.Equal(t, "/admin/pages", w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: "Error al cargar la página"}}, flashes(w))
}

func TestCategories_CRUD(t *testing.T) {
	f := newFixture(t)

	w := f.post("/admin/categories/save", url.Values{"name": {"  Postres "}, "sort_order": {"3"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: "Categoría creada exitosamente"}}, flashes(w))
	assert.Equal(t, menudomain.Category{ID: "new-id", Name: "Postres", SortOrder: 3}, f.categories.items["new-id"])

	w = f.get("/admin/categories")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Postres")

	w = f.post("/admin/categories/save", url.Values{"id": {"new-id"}, "name": {"Dulces"}})
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: "Categoría actualizada exitosamente"}}, flashes(w))
	assert.Equal(t, "Dulces", f.categories.items["new-id"].Name)

	w = f.post("/admin/categories/delete/new-id", url.Values{})
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: "Categoría eliminada exitosamente"}}, flashes(w))

	w = f.post("/admin/categories/delete/new-id", url.Values{})
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: "Error al eliminar la categoría"}}, flashes(w))
}

func TestCategories_NameRequired(t *testing.T) {
	f := newFixture(t)
	w := f.post("/admin/categories/save", url.Values{"name": {"   "}})
	assert.Equal(t, "/admin/categories/add", w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: "El nombre de la categoría es requerido"}}, flashes(w))
	assert.Empty(t, f.categories.items)
}
