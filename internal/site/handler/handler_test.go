package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactdomain "lighthouse-restaurant/backend/internal/contact/domain"
	contentdomain "lighthouse-restaurant/backend/internal/content/domain"
	"lighthouse-restaurant/backend/internal/mail"
	"lighthouse-restaurant/backend/internal/media/storage"
	menudomain "lighthouse-restaurant/backend/internal/menu/domain"
	"lighthouse-restaurant/backend/internal/server/web"
)

type fakeCategories struct {
	items []menudomain.Category
	err   error
}

func (f *fakeCategories) List(ctx context.Context) ([]menudomain.Category, error) { return f.items, f.err }

type fakeProducts struct {
	items        []menudomain.Product
	err          error
	featuredArgs []int
}

func (f *fakeProducts) List(ctx context.Context) ([]menudomain.Product, error) { return f.items, f.err }

func (f *fakeProducts) ListFeatured(ctx context.Context, limit int) ([]menudomain.Product, error) {
	f.featuredArgs = append(f.featuredArgs, limit)
	var out []menudomain.Product
	for _, p := range f.items {
		if p.Featured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, f.err
}

type fakePages struct {
	bySlug map[string]*contentdomain.Page
	err    error
}

func (f *fakePages) GetPublished(ctx context.Context, slug string) (*contentdomain.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySlug[slug], nil
}

type fakeSettings struct {
	s   *contentdomain.Settings
	err error
}

func (f *fakeSettings) Get(ctx context.Context) (*contentdomain.Settings, error) { return f.s, f.err }

type fakeMessages struct {
	saved []*contactdomain.Message
	err   error
}

func (f *fakeMessages) Create(ctx context.Context, m *contactdomain.Message) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, m)
	return nil
}

type fakeMedia struct {
	objects []storage.Object
	folders []string
}

func (f *fakeMedia) List(ctx context.Context, folder string) ([]storage.Object, error) {
	f.folders = append(f.folders, folder)
	return f.objects, nil
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fixture struct {
	categories *fakeCategories
	products   *fakeProducts
	pages      *fakePages
	settings   *fakeSettings
	messages   *fakeMessages
	media      *fakeMedia
	mailer     *fakeMailer
	router     *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rend, err := web.NewRenderer()
	require.NoError(t, err)

	f := &fixture{
		categories: &fakeCategories{},
		products:   &fakeProducts{},
		pages:      &fakePages{bySlug: map[string]*contentdomain.Page{}},
		settings:   &fakeSettings{},
		messages:   &fakeMessages{},
		media:      &fakeMedia{},
		mailer:     &fakeMailer{},
	}
	h := NewHandler(Deps{
		Categories: f.categories,
		Products:   f.products,
		Pages:      f.pages,
		Settings:   f.settings,
		Messages:   f.messages,
		Media:      f.media,
		Mailer:     f.mailer,
		Inbox:      "staff@lighthouse.test",
	})
	h.newID = func() string { return "msg-1" }
	h.nowF = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.HTMLRender = rend
	h.Register(r)
	r.NoRoute(h.NotFound)
	f.router = r
	return f
}

func (f *fixture) get(target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func (f *fixture) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func flashes(w *httptest.ResponseRecorder) []web.Flash {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == web.FlashCookie {
			found = c
		}
	}
	if found == nil {
		return nil
	}
	return web.DecodeFlashes(found.Value)
}

func TestHome_RendersFeaturedScheduleAndHero(t *testing.T) {
	f := newFixture(t)
	f.products.items = []menudomain.Product{
		{Name: "Ceviche del Faro", PriceCents: 1250, Featured: true},
		{Name: "Pulpo a la brasa", PriceCents: 1800, Featured: true},
		{Name: "Pan", PriceCents: 200},
	}
	f.settings.s = &contentdomain.Settings{
		HeroTitle:    "Bienvenidos",
		HeroImageURL: "https://cdn.test/hero/mar.jpg",
		ScheduleJSON: `{"Lunes":"12:00 - 22:00","Domingo":"Cerrado"}`,
	}

	w := f.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Bienvenidos")
	assert.Contains(t, body, "Ceviche del Faro")
	assert.Contains(t, body, "$12.50")
	assert.NotContains(t, body, ">Pan<")
	assert.Contains(t, body, "https://cdn.test/hero/mar.jpg")
	assert.Less(t, strings.Index(body, "Lunes"), strings.Index(body, "Domingo"))
	assert.Equal(t, []int{FeaturedLimit}, f.products.featuredArgs)
}

func TestHome_HeroFallsBackToHomePage(t *testing.T) {
	f := newFixture(t)
	f.pages.bySlug["home"] = &contentdomain.Page{Slug: "home", HeroImageURL: "https://cdn.test/hero/home.jpg"}

	w := f.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://cdn.test/hero/home.jpg")
}

func TestHome_StoreErrorsRenderEmptyPage(t *testing.T) {
	f := newFixture(t)
	f.settings.err = errors.New("db down")
	f.products.err = errors.New("db down")
	f.pages.err = errors.New("db down")

	w := f.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), contentdomain.DefaultHeroImage)
}

func TestMenu_GroupsByCategory(t *testing.T) {
	f := newFixture(t)
	f.categories.items = []menudomain.Category{{ID: "c1", Name: "Entradas"}, {ID: "c2", Name: "Postres"}}
	f.products.items = []menudomain.Product{
		{CategoryID: "c2", Name: "Flan", PriceCents: 500, Available: true},
		{CategoryID: "c1", Name: "Croquetas", PriceCents: 700, Available: false},
	}
	f.media.objects = []storage.Object{{Name: "carta.jpg", URL: "https://cdn.test/menu/carta.jpg", DisplayName: "carta"}}

	w := f.get("/menu")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Less(t, strings.Index(body, "Entradas"), strings.Index(body, "Croquetas"))
	assert.Less(t, strings.Index(body, "Croquetas"), strings.Index(body, "Postres"))
	assert.Contains(t, body, "Agotado")
	assert.Contains(t, body, "https://cdn.test/menu/carta.jpg")
	assert.Equal(t, []string{storage.FolderMenu}, f.media.folders)
}

func TestMenu_ErrorRedirectsHome(t *testing.T) {
	f := newFixture(t)
	f.categories.err = errors.New("db down")

	w := f.get("/menu")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: msgMenuFailed}}, flashes(w))
}

func TestAbout(t *testing.T) {
	f := newFixture(t)
	f.settings.s = &contentdomain.Settings{HistoriaHTML: "<p>Desde 1987</p>"}

	w := f.get("/about")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<p>Desde 1987</p>")
}

func TestContactGet_RedirectsToAnchor(t *testing.T) {
	f := newFixture(t)
	w := f.get("/contact")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/#contacto", w.Header().Get("Location"))
}

func TestContact_StoresAndNotifies(t *testing.T) {
	f := newFixture(t)

	w := f.post("/contact", url.Values{
		"name": {" Ana "}, "email": {"ana@example.com"}, "subject": {"Reserva"}, "message": {"Mesa para 4"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/#contacto", w.Header().Get("Location"))
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: msgContactSent}}, flashes(w))

	require.Len(t, f.messages.saved, 1)
	m := f.messages.saved[0]
	assert.Equal(t, "msg-1", m.ID)
	assert.Equal(t, "Ana", m.Name)
	assert.False(t, m.Read)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "staff@lighthouse.test", f.mailer.sent[0].To)
	assert.Equal(t, "ana@example.com", f.mailer.sent[0].ReplyTo)
}

func TestContact_MailFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = &mail.Error{Code: "ECONNECTION", Err: errors.New("refused")}

	w := f.post("/contact", url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "message": {"Hola"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, []web.Flash{{Kind: web.FlashSuccess, Text: msgContactSent}}, flashes(w))
	assert.Len(t, f.messages.saved, 1)
}

func TestContact_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		storeErr error
		text     string
	}{
		{"missing message", url.Values{"name": {"Ana"}, "email": {"ana@example.com"}}, nil, msgContactRequired},
		{"bad email", url.Values{"name": {"Ana"}, "email": {"not-an-email"}, "message": {"Hola"}}, nil, msgContactEmail},
		{"store failure", url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "message": {"Hola"}}, errors.New("db down"), msgContactFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.messages.err = tt.storeErr

			w := f.post("/contact", tt.form)
			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, []web.Flash{{Kind: web.FlashError, Text: tt.text}}, flashes(w))
			assert.Empty(t, f.mailer.sent)
		})
	}
}

func TestPage_PublishedAndMissing(t *testing.T) {
	f := newFixture(t)
	f.pages.bySlug["eventos"] = &contentdomain.Page{Slug: "eventos", Title: "Eventos", ContentHTML: "<p>Jazz los viernes</p>"}

	w := f.get("/p/eventos")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<p>Jazz los viernes</p>")

	w = f.get("/p/borrador")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), msgNotFound)
}

func TestLegacyRedirects(t *testing.T) {
	f := newFixture(t)

	w := f.get("/forgot-password")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/forgot-password", w.Header().Get("Location"))

	w = f.get("/reset-password?token=abc")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/reset-password?token=abc", w.Header().Get("Location"))
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)
	w := f.get("/no-existe")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Página no encontrada")
}
