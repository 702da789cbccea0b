package handler

import (
	"errors"
	"log"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	"lighthouse-restaurant/backend/internal/media/storage"
	"lighthouse-restaurant/backend/internal/server/web"
)

const (
	mediaPath      = "/admin/media"
	menuImagesPath = "/admin/menu-images"
	maxImageName   = 50
)

var imageNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9 -]`)

// mediaGroup is one folder on the media page.
type mediaGroup struct {
	Label   string
	Objects []storage.Object
}

var folderLabels = map[string]string{
	storage.FolderHero:     "Portada",
	storage.FolderMenu:     "Menú",
	storage.FolderProducts: "Productos",
}

func (h *Handler) listMedia(c *gin.Context) {
	if h.deps.Media == nil {
		web.Redirect(c, web.FlashError, "Error al cargar el gestor de medios", "/admin")
		return
	}
	groups := make([]mediaGroup, 0, len(storage.Folders))
	for _, folder := range storage.Folders {
		objects, err := h.deps.Media.List(c.Request.Context(), folder)
		if err != nil {
			log.Printf("admin: list media %s: %v", folder, err)
			web.Redirect(c, web.FlashError, "Error al cargar el gestor de medios", "/admin")
			return
		}
		groups = append(groups, mediaGroup{Label: folderLabels[folder], Objects: objects})
	}
	c.HTML(http.StatusOK, "admin/media", web.View(c, "Gestor de Medios", gin.H{
		"Folders": storage.Folders,
		"Groups":  groups,
	}))
}

func (h *Handler) uploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil || fh.Size == 0 {
		web.Redirect(c, web.FlashError, "Debe seleccionar un archivo", mediaPath)
		return
	}
	folder := c.PostForm("folder")
	if _, ok := folderLabels[folder]; !ok {
		web.Redirect(c, web.FlashError, "Carpeta inválida", mediaPath)
		return
	}
	obj, err := h.upload(c, folder, fh.Filename, fh)
	if err != nil {
		log.Printf("admin: upload media: %v", err)
		web.Redirect(c, web.FlashError, "Error al subir el archivo", mediaPath)
		return
	}
	h.logEvent(c, auditdomain.ActionCreate, "media", obj.Path)
	web.Redirect(c, web.FlashSuccess, "Archivo subido correctamente", mediaPath)
}

func (h *Handler) deleteMedia(c *gin.Context) {
	key := strings.TrimSpace(c.PostForm("path"))
	if err := h.deleteObject(c, key); err != nil {
		log.Printf("admin: delete media %q: %v", key, err)
		web.Redirect(c, web.FlashError, "Error al eliminar el archivo", mediaPath)
		return
	}
	web.Redirect(c, web.FlashSuccess, "Archivo eliminado correctamente", mediaPath)
}

func (h *Handler) listMenuImages(c *gin.Context) {
	if h.deps.Media == nil {
		web.Redirect(c, web.FlashError, "Error al cargar las imágenes del menú", "/admin")
		return
	}
	images, err := h.deps.Media.List(c.Request.Context(), storage.FolderMenu)
	if err != nil {
		log.Printf("admin: list menu images: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar las imágenes del menú", "/admin")
		return
	}
	c.HTML(http.StatusOK, "admin/menu_images", web.View(c, "Imágenes del Menú", gin.H{"Images": images}))
}

// uploadMenuImage stores an image in the menu folder. An optional display name replaces the
// uploaded file's base name.
func (h *Handler) uploadMenuImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil || fh.Size == 0 {
		web.Redirect(c, web.FlashError, "Error al subir la imagen: No se ha seleccionado ninguna imagen", menuImagesPath)
		return
	}
	filename := fh.Filename
	if name := menuImageName(c.PostForm("name")); name != "" {
		filename = name + path.Ext(fh.Filename)
	}
	obj, err := h.upload(c, storage.FolderMenu, filename, fh)
	if err != nil {
		log.Printf("admin: upload menu image: %v", err)
		web.Redirect(c, web.FlashError, "Error al subir la imagen: "+uploadReason(err), menuImagesPath)
		return
	}
	h.logEvent(c, auditdomain.ActionCreate, "media", obj.Path)
	web.Redirect(c, web.FlashSuccess, "Imagen del menú subida correctamente", menuImagesPath)
}

func (h *Handler) deleteMenuImage(c *gin.Context) {
	key := strings.TrimSpace(c.PostForm("path"))
	if key == "" {
		web.Redirect(c, web.FlashError, "Error al eliminar la imagen: Ruta de imagen no especificada", menuImagesPath)
		return
	}
	if err := h.deleteObject(c, key); err != nil {
		log.Printf("admin: delete menu image %q: %v", key, err)
		web.Redirect(c, web.FlashError, "Error al eliminar la imagen: "+uploadReason(err), menuImagesPath)
		return
	}
	web.Redirect(c, web.FlashSuccess, "Imagen eliminada correctamente", menuImagesPath)
}

func (h *Handler) deleteObject(c *gin.Context, key string) error {
	if h.deps.Media == nil {
		return errors.New("media storage not configured")
	}
	if err := h.deps.Media.Delete(c.Request.Context(), key); err != nil {
		return err
	}
	h.logEvent(c, auditdomain.ActionDelete, "media", key)
	return nil
}

// menuImageName keeps letters, digits, spaces and dashes of a staff-supplied name, up to 50 characters.
func menuImageName(name string) string {
	name = imageNameUnsafe.ReplaceAllString(strings.TrimSpace(name), "_")
	if len(name) > maxImageName {
		name = name[:maxImageName]
	}
	return strings.TrimSpace(name)
}

func uploadReason(err error) string {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return "el archivo supera los 10 MB"
	case errors.Is(err, storage.ErrNotImage):
		return "el archivo no es una imagen"
	case errors.Is(err, storage.ErrEmptyFile):
		return "el archivo está vacío"
	case errors.Is(err, storage.ErrInvalidPath):
		return "ruta inválida"
	default:
		return "inténtalo de nuevo"
	}
}
