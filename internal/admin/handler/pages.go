package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	contentdomain "lighthouse-restaurant/backend/internal/content/domain"
	contentrepo "lighthouse-restaurant/backend/internal/content/repository"
	"lighthouse-restaurant/backend/internal/media/storage"
	"lighthouse-restaurant/backend/internal/server/web"
)

const pagesPath = "/admin/pages"

func (h *Handler) listPages(c *gin.Context) {
	pages, err := h.deps.Pages.List(c.Request.Context())
	if err != nil {
		log.Printf("admin: list pages: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar las páginas", "/admin")
		return
	}
	c.HTML(http.StatusOK, "admin/pages", web.View(c, "Páginas", gin.H{"Pages": pages}))
}

func (h *Handler) addPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin/page_form", web.View(c, "Agregar Página", gin.H{
		"Page":       contentdomain.Page{Status: contentdomain.StatusDraft},
		"IsNew":      true,
		"HeroImages": h.heroImages(c),
	}))
}

func (h *Handler) editPage(c *gin.Context) {
	p, err := h.deps.Pages.Get(c.Request.Context(), c.Param("id"))
	if err != nil || p == nil {
		if err != nil {
			log.Printf("admin: get page: %v", err)
		}
		web.Redirect(c, web.FlashError, "Error al cargar la página", pagesPath)
		return
	}
	c.HTML(http.StatusOK, "admin/page_form", web.View(c, "Editar Página", gin.H{
		"Page":       *p,
		"IsNew":      false,
		"HeroImages": h.heroImages(c),
	}))
}

func (h *Handler) savePage(c *gin.Context) {
	ctx := c.Request.Context()
	id := strings.TrimSpace(c.PostForm("id"))
	back := pagesPath + "/add"
	if id != "" {
		back = pagesPath + "/edit/" + id
	}

	status, err := contentdomain.ParseStatus(c.PostForm("status"))
	if err != nil {
		web.Redirect(c, web.FlashError, "Estado de página inválido", back)
		return
	}
	p := &contentdomain.Page{
		ID:           id,
		Slug:         contentdomain.NormalizeSlug(c.PostForm("slug")),
		Title:        strings.TrimSpace(c.PostForm("title")),
		ContentHTML:  c.PostForm("content_html"),
		HeroImageURL: strings.TrimSpace(c.PostForm("hero_image_url")),
		Status:       status,
		SortOrder:    formInt(c, "sort_order"),
	}
	if err := p.Validate(); err != nil {
		web.Redirect(c, web.FlashError, "Slug y Título son requeridos", back)
		return
	}

	action := auditdomain.ActionUpdate
	if id == "" {
		action = auditdomain.ActionCreate
		p.ID = h.newID()
		err = h.deps.Pages.Create(ctx, p)
	} else {
		err = h.deps.Pages.Update(ctx, p)
	}
	if errors.Is(err, contentrepo.ErrSlugTaken) {
		web.Redirect(c, web.FlashError, "Ya existe una página con ese slug", back)
		return
	}
	if err != nil {
		log.Printf("admin: save page: %v", err)
		verb := "actualizar"
		if id == "" {
			verb = "crear"
		}
		web.Redirect(c, web.FlashError, fmt.Sprintf("Error al %s la página", verb), back)
		return
	}
	h.logEvent(c, action, "page", p.ID)
	done := "actualizada"
	if id == "" {
		done = "creada"
	}
	web.Redirect(c, web.FlashSuccess, fmt.Sprintf("Página %s exitosamente", done), pagesPath)
}

func (h *Handler) deletePage(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.Pages.Delete(c.Request.Context(), id); err != nil {
		log.Printf("admin: delete page %s: %v", id, err)
		web.Redirect(c, web.FlashError, "Error al eliminar la página", pagesPath)
		return
	}
	h.logEvent(c, auditdomain.ActionDelete, "page", id)
	web.Redirect(c, web.FlashSuccess, "Página eliminada exitosamente", pagesPath)
}

// heroImages lists the hero folder for the image pickers. Failures yield an empty list.
func (h *Handler) heroImages(c *gin.Context) []storage.Object {
	if h.deps.Media == nil {
		return nil
	}
	images, err := h.deps.Media.List(c.Request.Context(), storage.FolderHero)
	if err != nil {
		log.Printf("admin: list hero images: %v", err)
		return nil
	}
	return images
}
