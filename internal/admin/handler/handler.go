// Package handler serves the back office: dashboard, menu, content pages, site settings, media and
// contact messages. Every route requires an admin session.
package handler

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lighthouse-restaurant/backend/internal/audit"
	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	contactdomain "lighthouse-restaurant/backend/internal/contact/domain"
	contactrepo "lighthouse-restaurant/backend/internal/contact/repository"
	contentrepo "lighthouse-restaurant/backend/internal/content/repository"
	"lighthouse-restaurant/backend/internal/media/storage"
	menurepo "lighthouse-restaurant/backend/internal/menu/repository"
	"lighthouse-restaurant/backend/internal/platform/rbac"
	"lighthouse-restaurant/backend/internal/server/interceptors"
	"lighthouse-restaurant/backend/internal/server/web"
)

const (
	dashboardContacts = 5
	dashboardAudit    = 10
)

// AuditReader lists recent audit entries for the dashboard.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]*auditdomain.AuditLog, error)
}

// Media stores uploaded images.
type Media interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (storage.Object, error)
	List(ctx context.Context, folder string) ([]storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// Deps are the collaborators of the back office. AuditLog and Audit may be nil.
type Deps struct {
	Categories menurepo.CategoryRepository
	Products   menurepo.ProductRepository
	Pages      contentrepo.PageRepository
	Settings   contentrepo.SettingsRepository
	Contacts   contactrepo.Repository
	Media      Media
	AuditLog   AuditReader
	Audit      audit.AuditLogger
}

// Handler serves the admin pages.
type Handler struct {
	deps  Deps
	newID func() string
}

// NewHandler returns a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, newID: uuid.NewString}
}

// Register mounts the admin routes under /admin behind the session and admin gates.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group(rbac.AdminPath, rbac.Gate(rbac.RequireSession), rbac.Gate(rbac.RequireAdmin))
	g.GET("", h.dashboard)
	g.GET("/dashboard", func(c *gin.Context) { c.Redirect(http.StatusFound, rbac.AdminPath) })

	g.GET("/products", h.listProducts)
	g.GET("/products/add", h.addProduct)
	g.GET("/products/edit/:id", h.editProduct)
	g.POST("/products/save", h.saveProduct)
	g.POST("/products/delete/:id", h.deleteProduct)
	g.POST("/products/toggle-featured/:id", h.toggleFeatured)

	g.GET("/categories", h.listCategories)
	g.GET("/categories/add", h.addCategory)
	g.GET("/categories/edit/:id", h.editCategory)
	g.POST("/categories/save", h.saveCategory)
	g.POST("/categories/delete/:id", h.deleteCategory)

	g.GET("/pages", h.listPages)
	g.GET("/pages/add", h.addPage)
	g.GET("/pages/edit/:id", h.editPage)
	g.POST("/pages/save", h.savePage)
	g.POST("/pages/delete/:id", h.deletePage)

	g.GET("/settings", h.settingsForm)
	g.POST("/settings/save", h.saveSettings)

	g.GET("/media", h.listMedia)
	g.POST("/media/upload", h.uploadMedia)
	g.POST("/media/delete", h.deleteMedia)

	g.GET("/menu-images", h.listMenuImages)
	g.POST("/menu-images/upload", h.uploadMenuImage)
	g.POST("/menu-images/delete", h.deleteMenuImage)

	g.GET("/contacts", h.listContacts)
	g.POST("/contacts/:id/read", h.markContactRead)
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	failed := false

	products, err := h.deps.Products.Count(ctx)
	if err != nil {
		log.Printf("admin: count products: %v", err)
		failed = true
	}
	categories, err := h.deps.Categories.Count(ctx)
	if err != nil {
		log.Printf("admin: count categories: %v", err)
		failed = true
	}
	total, unread, err := h.deps.Contacts.Counts(ctx)
	if err != nil {
		log.Printf("admin: count contacts: %v", err)
		failed = true
	}
	recent, err := h.deps.Contacts.ListRecent(ctx, dashboardContacts)
	if err != nil {
		log.Printf("admin: recent contacts: %v", err)
		recent, failed = nil, true
	}
	var activity []*auditdomain.AuditLog
	if h.deps.AuditLog != nil {
		if activity, err = h.deps.AuditLog.ListRecent(ctx, dashboardAudit); err != nil {
			log.Printf("admin: recent audit: %v", err)
			activity = nil
		}
	}
	if failed {
		web.AddFlash(c, web.FlashError, "Error al cargar el panel de administración")
	}

	c.HTML(http.StatusOK, "admin/dashboard", web.View(c, "Panel de Administración", gin.H{
		"ProductsCount":   products,
		"CategoriesCount": categories,
		"MessagesCount":   total,
		"UnreadCount":     unread,
		"RecentContacts":  recent,
		"RecentAudit":     activity,
	}))
}

func (h *Handler) listContacts(c *gin.Context) {
	messages, err := h.deps.Contacts.ListRecent(c.Request.Context(), 0)
	if err != nil {
		log.Printf("admin: list contacts: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar los mensajes", rbac.AdminPath)
		return
	}
	if messages == nil {
		messages = []contactdomain.Message{}
	}
	c.HTML(http.StatusOK, "admin/contacts", web.View(c, "Mensajes de Contacto", gin.H{"Messages": messages}))
}

func (h *Handler) markContactRead(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.Contacts.MarkRead(c.Request.Context(), id); err != nil {
		log.Printf("admin: mark contact %s read: %v", id, err)
		web.Redirect(c, web.FlashError, "No se pudo marcar el mensaje como leído", "/admin/contacts")
		return
	}
	h.logEvent(c, auditdomain.ActionUpdate, "contact", id)
	web.Redirect(c, web.FlashSuccess, "Mensaje marcado como leído", "/admin/contacts")
}

// logEvent records a back office change made by the logged-in admin.
func (h *Handler) logEvent(c *gin.Context, action, resource, id string) {
	if h.deps.Audit == nil {
		return
	}
	ctx := c.Request.Context()
	userID, _ := interceptors.GetUserID(ctx)
	h.deps.Audit.LogEvent(ctx, userID, action, resource, id)
}
