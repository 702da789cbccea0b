package handler

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	menudomain "lighthouse-restaurant/backend/internal/menu/domain"
	"lighthouse-restaurant/backend/internal/server/web"
)

const categoriesPath = "/admin/categories"

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.deps.Categories.List(c.Request.Context())
	if err != nil {
		log.Printf("admin: list categories: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar las categorías", "/admin")
		return
	}
	c.HTML(http.StatusOK, "admin/categories", web.View(c, "Categorías", gin.H{"Categories": categories}))
}

func (h *Handler) addCategory(c *gin.Context) {
	c.HTML(http.StatusOK, "admin/category_form", web.View(c, "Agregar Categoría", gin.H{
		"Category": menudomain.Category{},
		"IsNew":    true,
	}))
}

func (h *Handler) editCategory(c *gin.Context) {
	cat, err := h.deps.Categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil || cat == nil {
		if err != nil {
			log.Printf("admin: get category: %v", err)
		}
		web.Redirect(c, web.FlashError, "Error al cargar la categoría", categoriesPath)
		return
	}
	c.HTML(http.StatusOK, "admin/category_form", web.View(c, "Editar Categoría", gin.H{
		"Category": *cat,
		"IsNew":    false,
	}))
}

func (h *Handler) saveCategory(c *gin.Context) {
	ctx := c.Request.Context()
	id := strings.TrimSpace(c.PostForm("id"))
	back := categoriesPath + "/add"
	if id != "" {
		back = categoriesPath + "/edit/" + id
	}

	cat := &menudomain.Category{
		ID:          id,
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		SortOrder:   formInt(c, "sort_order"),
	}
	cat.Normalize()
	if err := cat.Validate(); err != nil {
		web.Redirect(c, web.FlashError, "El nombre de la categoría es requerido", back)
		return
	}

	var err error
	action := auditdomain.ActionUpdate
	if id == "" {
		action = auditdomain.ActionCreate
		cat.ID = h.newID()
		err = h.deps.Categories.Create(ctx, cat)
	} else {
		err = h.deps.Categories.Update(ctx, cat)
	}
	if err != nil {
		log.Printf("admin: save category: %v", err)
		verb := "actualizar"
		if id == "" {
			verb = "crear"
		}
		web.Redirect(c, web.FlashError, fmt.Sprintf("Error al %s la categoría", verb), back)
		return
	}
	h.logEvent(c, action, "category", cat.ID)
	done := "actualizada"
	if id == "" {
		done = "creada"
	}
	web.Redirect(c, web.FlashSuccess, fmt.Sprintf("Categoría %s exitosamente", done), categoriesPath)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.Categories.Delete(c.Request.Context(), id); err != nil {
		log.Printf("admin: delete category %s: %v", id, err)
		web.Redirect(c, web.FlashError, "Error al eliminar la categoría", categoriesPath)
		return
	}
	h.logEvent(c, auditdomain.ActionDelete, "category", id)
	web.Redirect(c, web.FlashSuccess, "Categoría eliminada exitosamente", categoriesPath)
}
