// Package handler serves the public restaurant site: home, menu, about, content pages and the contact form.
package handler

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	contactdomain "lighthouse-restaurant/backend/internal/contact/domain"
	contentdomain "lighthouse-restaurant/backend/internal/content/domain"
	"lighthouse-restaurant/backend/internal/mail"
	"lighthouse-restaurant/backend/internal/media/storage"
	menudomain "lighthouse-restaurant/backend/internal/menu/domain"
	"lighthouse-restaurant/backend/internal/server/web"
)

// FeaturedLimit is the number of featured products on the home page.
const FeaturedLimit = 3

const contactAnchor = "/#contacto"

const (
	msgMenuFailed      = "Error al cargar el menú. Por favor, intente de nuevo."
	msgContactSent     = "¡Mensaje enviado con éxito! Nos pondremos en contacto contigo pronto."
	msgContactFailed   = "Error al enviar el mensaje. Por favor, intente de nuevo."
	msgContactRequired = "Por favor completa tu nombre, correo y mensaje."
	msgContactEmail    = "Por favor ingresa un correo electrónico válido."
	msgNotFound        = "La página que buscas no existe."
)

// Categories lists menu categories.
type Categories interface {
	List(ctx context.Context) ([]menudomain.Category, error)
}

// Products lists menu products.
type Products interface {
	List(ctx context.Context) ([]menudomain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]menudomain.Product, error)
}

// Pages reads published content pages. GetPublished returns nil when no published page has the slug.
type Pages interface {
	GetPublished(ctx context.Context, slug string) (*contentdomain.Page, error)
}

// Settings reads the site settings. Get returns nil when they were never saved.
type Settings interface {
	Get(ctx context.Context) (*contentdomain.Settings, error)
}

// Messages stores contact form submissions.
type Messages interface {
	Create(ctx context.Context, m *contactdomain.Message) error
}

// Media lists stored images.
type Media interface {
	List(ctx context.Context, folder string) ([]storage.Object, error)
}

// Deps are the collaborators of the public site. Media and Mailer may be nil.
type Deps struct {
	Categories Categories
	Products   Products
	Pages      Pages
	Settings   Settings
	Messages   Messages
	Media      Media
	Mailer     mail.Sender
	// Inbox receives contact notifications; empty disables them.
	Inbox string
}

// Handler serves the public pages.
type Handler struct {
	deps  Deps
	nowF  func() time.Time
	newID func() string
}

// NewHandler returns a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, nowF: time.Now, newID: uuid.NewString}
}

// Register mounts the public routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.home)
	r.GET("/menu", h.menu)
	r.GET("/about", h.about)
	r.GET("/contact", func(c *gin.Context) { c.Redirect(http.StatusFound, contactAnchor) })
	r.POST("/contact", h.contact)
	r.GET("/p/:slug", h.page)

	r.GET("/forgot-password", func(c *gin.Context) { c.Redirect(http.StatusFound, "/auth/forgot-password") })
	r.GET("/reset-password", h.legacyReset)
}

// NotFound renders the 404 page. It is installed as the engine's NoRoute handler.
func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, web.ErrorTemplate, web.View(c, "Página no encontrada", gin.H{"Message": msgNotFound}))
}

func (h *Handler) home(c *gin.Context) {
	ctx := c.Request.Context()

	settings, err := h.deps.Settings.Get(ctx)
	if err != nil {
		log.Printf("site: settings: %v", err)
		settings = nil
	}
	featured, err := h.deps.Products.ListFeatured(ctx, FeaturedLimit)
	if err != nil {
		log.Printf("site: featured products: %v", err)
		featured = nil
	}
	schedule, err := settings.Schedule()
	if err != nil {
		log.Printf("site: schedule: %v", err)
		schedule = nil
	}

	c.HTML(http.StatusOK, "site/home", web.View(c, "Inicio", gin.H{
		"Settings": settings,
		"Featured": featured,
		"Schedule": schedule,
		"HeroURL":  contentdomain.HeroImage(settings, h.homePage(ctx)),
	}))
}

// homePage returns the first published page with a home slug, or nil.
func (h *Handler) homePage(ctx context.Context) *contentdomain.Page {
	for _, slug := range contentdomain.HomeSlugs {
		p, err := h.deps.Pages.GetPublished(ctx, slug)
		if err != nil {
			log.Printf("site: home page %q: %v", slug, err)
			continue
		}
		if p != nil {
			return p
		}
	}
	return nil
}

func (h *Handler) menu(c *gin.Context) {
	ctx := c.Request.Context()
	categories, err := h.deps.Categories.List(ctx)
	if err != nil {
		log.Printf("site: menu categories: %v", err)
		web.Redirect(c, web.FlashError, msgMenuFailed, "/")
		return
	}
	products, err := h.deps.Products.List(ctx)
	if err != nil {
		log.Printf("site: menu products: %v", err)
		web.Redirect(c, web.FlashError, msgMenuFailed, "/")
		return
	}

	var images []storage.Object
	if h.deps.Media != nil {
		images, err = h.deps.Media.List(ctx, storage.FolderMenu)
		if err != nil {
			log.Printf("site: menu images: %v", err)
			images = nil
		}
	}

	c.HTML(http.StatusOK, "site/menu", web.View(c, "Menú", gin.H{
		"Sections":   menudomain.GroupByCategory(categories, products),
		"MenuImages": images,
	}))
}

func (h *Handler) about(c *gin.Context) {
	settings, err := h.deps.Settings.Get(c.Request.Context())
	if err != nil {
		log.Printf("site: settings: %v", err)
		settings = nil
	}
	c.HTML(http.StatusOK, "site/about", web.View(c, "Sobre Nosotros", gin.H{"Settings": settings}))
}

func (h *Handler) page(c *gin.Context) {
	slug := contentdomain.NormalizeSlug(c.Param("slug"))
	p, err := h.deps.Pages.GetPublished(c.Request.Context(), slug)
	if err != nil {
		log.Printf("site: page %q: %v", slug, err)
	}
	if p == nil {
		h.NotFound(c)
		return
	}
	c.HTML(http.StatusOK, "site/page", web.View(c, p.Title, gin.H{"Page": p}))
}

func (h *Handler) contact(c *gin.Context) {
	ctx := c.Request.Context()
	m := &contactdomain.Message{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Phone:   c.PostForm("phone"),
		Subject: c.PostForm("subject"),
		Body:    c.PostForm("message"),
	}
	m.Normalize()
	switch err := m.Validate(); err {
	case nil:
	case contactdomain.ErrInvalidEmail:
		web.Redirect(c, web.FlashError, msgContactEmail, contactAnchor)
		return
	default:
		web.Redirect(c, web.FlashError, msgContactRequired, contactAnchor)
		return
	}

	m.ID = h.newID()
	if err := h.deps.Messages.Create(ctx, m); err != nil {
		log.Printf("site: store contact message: %v", err)
		web.Redirect(c, web.FlashError, msgContactFailed, contactAnchor)
		return
	}
	h.notify(ctx, m)
	web.Redirect(c, web.FlashSuccess, msgContactSent, contactAnchor)
}

// notify mails the stored message to the staff inbox. Failures are logged only.
func (h *Handler) notify(ctx context.Context, m *contactdomain.Message) {
	if h.deps.Mailer == nil || h.deps.Inbox == "" {
		return
	}
	msg, err := mail.ContactNotification(h.deps.Inbox, mail.ContactDetails{
		Name:    m.Name,
		Email:   m.Email,
		Phone:   m.Phone,
		Subject: m.Subject,
		Message: m.Body,
		SentAt:  h.nowF(),
	})
	if err != nil {
		log.Printf("site: contact notification: %v", err)
		return
	}
	if err := h.deps.Mailer.Send(ctx, msg); err != nil {
		log.Printf("site: contact notification (code %s): %v", mail.ErrorCode(err), err)
	}
}

func (h *Handler) legacyReset(c *gin.Context) {
	target := "/auth/reset-password"
	if token := c.Query("token"); token != "" {
		target += "?token=" + url.QueryEscape(token)
	}
	c.Redirect(http.StatusFound, target)
}
