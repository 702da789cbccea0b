package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	contactdomain "lighthouse-restaurant/backend/internal/contact/domain"
	contactrepo "lighthouse-restaurant/backend/internal/contact/repository"
	contentdomain "lighthouse-restaurant/backend/internal/content/domain"
	contentrepo "lighthouse-restaurant/backend/internal/content/repository"
	"lighthouse-restaurant/backend/internal/media/storage"
	menudomain "lighthouse-restaurant/backend/internal/menu/domain"
	menurepo "lighthouse-restaurant/backend/internal/menu/repository"
	"lighthouse-restaurant/backend/internal/server/interceptors"
	"lighthouse-restaurant/backend/internal/server/web"
	sessiondomain "lighthouse-restaurant/backend/internal/session/domain"
)

type fakeCategories struct {
	items map[string]menudomain.Category
	err   error
}

func (f *fakeCategories) List(ctx context.Context) ([]menudomain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]menudomain.Category, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeCategories) Get(ctx context.Context, id string) (*menudomain.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, f.err
	}
	return &c, f.err
}

func (f *fakeCategories) Create(ctx context.Context, c *menudomain.Category) error {
	if f.err != nil {
		return f.err
	}
	f.items[c.ID] = *c
	return nil
}

func (f *fakeCategories) Update(ctx context.Context, c *menudomain.Category) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.items[c.ID]; !ok {
		return menurepo.ErrNotFound
	}
	f.items[c.ID] = *c
	return nil
}

func (f *fakeCategories) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return menurepo.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCategories) Count(ctx context.Context) (int, error) { return len(f.items), f.err }

type fakeProducts struct {
	items map[string]menudomain.Product
	err   error
}

func (f *fakeProducts) List(ctx context.Context) ([]menudomain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]menudomain.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProducts) ListFeatured(ctx context.Context, limit int) ([]menudomain.Product, error) {
	return nil, f.err
}

func (f *fakeProducts) Get(ctx context.Context, id string) (*menudomain.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, f.err
	}
	return &p, f.err
}

func (f *fakeProducts) Create(ctx context.Context, p *menudomain.Product) error {
	if f.err != nil {
		return f.err
	}
	f.items[p.ID] = *p
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, p *menudomain.Product) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.items[p.ID]; !ok {
		return menurepo.ErrNotFound
	}
	f.items[p.ID] = *p
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return menurepo.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	p, ok := f.items[id]
	if !ok {
		return false, menurepo.ErrNotFound
	}
	p.Featured = !p.Featured
	f.items[id] = p
	return p.Featured, nil
}

func (f *fakeProducts) Count(ctx context.Context) (int, error) { return len(f.items), f.err }

type fakePages struct {
	items map[string]contentdomain.Page
	err   error
}

func (f *fakePages) List(ctx context.Context) ([]contentdomain.Page, error) {
	out := make([]contentdomain.Page, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, f.err
}

func (f *fakePages) Get(ctx context.Context, id string) (*contentdomain.Page, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePages) GetPublished(ctx context.Context, slug string) (*contentdomain.Page, error) {
	for _, p := range f.items {
		if p.Slug == slug && p.Published() {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePages) Create(ctx context.Context, p *contentdomain.Page) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.items {
		if existing.Slug == p.Slug {
			return contentrepo.ErrSlugTaken
		}
	}
	f.items[p.ID] = *p
	return nil
}

func (f *fakePages) Update(ctx context.Context, p *contentdomain.Page) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.items[p.ID]; !ok {
		return contentrepo.ErrNotFound
	}
	f.items[p.ID] = *p
	return nil
}

func (f *fakePages) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return contentrepo.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeSettings struct {
	s   *contentdomain.Settings
	err error
}

func (f *fakeSettings) Get(ctx context.Context) (*contentdomain.Settings, error) { return f.s, f.err }

func (f *fakeSettings) Save(ctx context.Context, s *contentdomain.Settings) error {
	if f.err != nil {
		return f.err
	}
	f.s = s
	return nil
}

type fakeContacts struct {
	items []contactdomain.Message
	err   error
}

func (f *fakeContacts) Create(ctx context.Context, m *contactdomain.Message) error {
	f.items = append(f.items, *m)
	return nil
}

func (f *fakeContacts) ListRecent(ctx context.Context, limit int) ([]contactdomain.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.items) {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func (f *fakeContacts) MarkRead(ctx context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
			return nil
		}
	}
	return contactrepo.ErrNotFound
}

func (f *fakeContacts) Counts(ctx context.Context) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	unread := 0
	for _, m := range f.items {
		if !m.Read {
			unread++
		}
	}
	return len(f.items), unread, nil
}

type upload struct {
	folder, filename, contentType, body string
}

type fakeMedia struct {
	objects   map[string][]storage.Object
	uploads   []upload
	deleted   []string
	uploadErr error
	listErr   error
}

func (f *fakeMedia) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (storage.Object, error) {
	if f.uploadErr != nil {
		return storage.Object{}, f.uploadErr
	}
	b, _ := io.ReadAll(body)
	f.uploads = append(f.uploads, upload{folder: folder, filename: filename, contentType: contentType, body: string(b)})
	key := folder + "/1_" + filename
	return storage.Object{Name: "1_" + filename, Path: key, URL: "https://cdn.test/" + key}, nil
}

func (f *fakeMedia) List(ctx context.Context, folder string) ([]storage.Object, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects[folder], nil
}

func (f *fakeMedia) Delete(ctx context.Context, key string) error {
	if key == "" || strings.Contains(key, "..") {
		return storage.ErrInvalidPath
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type auditEvent struct {
	userID, action, resource, id string
}

type fakeAudit struct {
	events []auditEvent
	recent []*auditdomain.AuditLog
}

func (a *fakeAudit) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	a.events = append(a.events, auditEvent{userID: userID, action: action, resource: resource, id: metadata})
}

func (a *fakeAudit) ListRecent(ctx context.Context, limit int) ([]*auditdomain.AuditLog, error) {
	return a.recent, nil
}

type fixture struct {
	categories *fakeCategories
	products   *fakeProducts
	pages      *fakePages
	settings   *fakeSettings
	contacts   *fakeContacts
	media      *fakeMedia
	audit      *fakeAudit
	session    *sessiondomain.Session
	router     *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rend, err := web.NewRenderer()
	require.NoError(t, err)

	f := &fixture{
		categories: &fakeCategories{items: map[string]menudomain.Category{}},
		products:   &fakeProducts{items: map[string]menudomain.Product{}},
		pages:      &fakePages{items: map[string]contentdomain.Page{}},
		settings:   &fakeSettings{},
		contacts:   &fakeContacts{},
		media:      &fakeMedia{objects: map[string][]storage.Object{}},
		audit:      &fakeAudit{},
		session: &sessiondomain.Session{
			ID:        "sess-1",
			Snapshot:  &sessiondomain.Snapshot{UserID: "admin-1", Name: "Admin", IsAdmin: true},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	h := NewHandler(Deps{
		Categories: f.categories,
		Products:   f.products,
		Pages:      f.pages,
		Settings:   f.settings,
		Contacts:   f.contacts,
		Media:      f.media,
		AuditLog:   f.audit,
		Audit:      f.audit,
	})
	h.newID = func() string { return "new-id" }

	r := gin.New()
	r.HTMLRender = rend
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(interceptors.WithSession(c.Request.Context(), f.session))
		c.Next()
	})
	h.Register(r)
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

// multipartFile is a file part of a multipart form.
type multipartFile struct {
	field, filename, contentType, content string
}

func (f *fixture) postMultipart(t *testing.T, target string, fields map[string]string, file *multipartFile) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		hdr.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
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
	if found == nil || found.MaxAge < 0 {
		return nil
	}
	return web.DecodeFlashes(found.Value)
}
