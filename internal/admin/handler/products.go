package handler

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	"lighthouse-restaurant/backend/internal/media/storage"
	menudomain "lighthouse-restaurant/backend/internal/menu/domain"
	"lighthouse-restaurant/backend/internal/server/web"
)

const productsPath = "/admin/products"

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.deps.Products.List(c.Request.Context())
	if err != nil {
		log.Printf("admin: list products: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar los productos", "/admin")
		return
	}
	c.HTML(http.StatusOK, "admin/products", web.View(c, "Productos", gin.H{"Products": products}))
}

func (h *Handler) addProduct(c *gin.Context) {
	categories, err := h.deps.Categories.List(c.Request.Context())
	if err != nil {
		log.Printf("admin: product form categories: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar el formulario", productsPath)
		return
	}
	c.HTML(http.StatusOK, "admin/product_form", web.View(c, "Agregar Producto", gin.H{
		"Product":    menudomain.Product{Available: true},
		"IsNew":      true,
		"Categories": categories,
	}))
}

func (h *Handler) editProduct(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.deps.Products.Get(ctx, c.Param("id"))
	if err != nil || p == nil {
		if err != nil {
			log.Printf("admin: get product: %v", err)
		}
		web.Redirect(c, web.FlashError, "Error al cargar el producto", productsPath)
		return
	}
	categories, err := h.deps.Categories.List(ctx)
	if err != nil {
		log.Printf("admin: product form categories: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar el producto", productsPath)
		return
	}
	c.HTML(http.StatusOK, "admin/product_form", web.View(c, "Editar Producto", gin.H{
		"Product":    *p,
		"IsNew":      false,
		"Categories": categories,
	}))
}

// saveProduct creates or updates a product from the multipart form. An uploaded image replaces the
// stored one; without an upload the current image is kept.
func (h *Handler) saveProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := strings.TrimSpace(c.PostForm("id"))
	back := productsPath + "/add"
	if id != "" {
		back = productsPath + "/edit/" + id
	}

	price, err := menudomain.ParsePrice(c.PostForm("price"))
	name := strings.TrimSpace(c.PostForm("name"))
	if err != nil || name == "" {
		web.Redirect(c, web.FlashError, "Nombre y precio válidos son requeridos", back)
		return
	}

	p := &menudomain.Product{Available: true}
	if id != "" {
		existing, err := h.deps.Products.Get(ctx, id)
		if err != nil || existing == nil {
			if err != nil {
				log.Printf("admin: get product %s: %v", id, err)
			}
			web.Redirect(c, web.FlashError, "Error al cargar el producto", productsPath)
			return
		}
		p = existing
	}
	p.Name = name
	p.Description = strings.TrimSpace(c.PostForm("description"))
	p.PriceCents = price
	p.CategoryID = strings.TrimSpace(c.PostForm("category_id"))
	p.SKU = strings.TrimSpace(c.PostForm("sku"))
	p.Stock = formInt(c, "stock")
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.Featured = c.PostForm("is_featured") != ""
	p.Available = c.PostForm("is_available") != ""

	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		obj, err := h.upload(c, storage.FolderProducts, fh.Filename, fh)
		if err != nil {
			log.Printf("admin: product image: %v", err)
			web.Redirect(c, web.FlashError, "Error al subir la imagen del producto", back)
			return
		}
		p.ImageURL = obj.URL
	}

	if err := p.Validate(); err != nil {
		web.Redirect(c, web.FlashError, "Nombre y precio válidos son requeridos", back)
		return
	}

	verb, action := "actualizar", auditdomain.ActionUpdate
	if id == "" {
		verb, action = "crear", auditdomain.ActionCreate
		p.ID = h.newID()
		err = h.deps.Products.Create(ctx, p)
	} else {
		err = h.deps.Products.Update(ctx, p)
	}
	if err != nil {
		log.Printf("admin: save product: %v", err)
		web.Redirect(c, web.FlashError, fmt.Sprintf("Error al %s el producto", verb), back)
		return
	}
	h.logEvent(c, action, "product", p.ID)
	done := "actualizado"
	if id == "" {
		done = "creado"
	}
	web.Redirect(c, web.FlashSuccess, fmt.Sprintf("Producto %s exitosamente", done), productsPath)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.Products.Delete(c.Request.Context(), id); err != nil {
		log.Printf("admin: delete product %s: %v", id, err)
		web.Redirect(c, web.FlashError, "Error al eliminar el producto", productsPath)
		return
	}
	h.logEvent(c, auditdomain.ActionDelete, "product", id)
	web.Redirect(c, web.FlashSuccess, "Producto eliminado exitosamente", productsPath)
}

func (h *Handler) toggleFeatured(c *gin.Context) {
	id := c.Param("id")
	featured, err := h.deps.Products.ToggleFeatured(c.Request.Context(), id)
	if err != nil {
		log.Printf("admin: toggle featured %s: %v", id, err)
		web.Redirect(c, web.FlashError, "No se pudo cambiar el estado de destacado", productsPath)
		return
	}
	h.logEvent(c, auditdomain.ActionUpdate, "product", id)
	state := "desmarcado"
	if featured {
		state = "marcado"
	}
	web.Redirect(c, web.FlashSuccess, fmt.Sprintf("Producto %s como destacado", state), productsPath)
}

// upload sends a multipart file to storage under folder, named after filename.
func (h *Handler) upload(c *gin.Context, folder, filename string, fh *multipart.FileHeader) (storage.Object, error) {
	if h.deps.Media == nil {
		return storage.Object{}, errors.New("media storage not configured")
	}
	if fh.Size > storage.MaxUploadBytes {
		return storage.Object{}, storage.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return storage.Object{}, err
	}
	defer f.Close()
	return h.deps.Media.Upload(c.Request.Context(), folder, filename, fh.Header.Get("Content-Type"), f, fh.Size)
}

func formInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil {
		return 0
	}
	return n
}
