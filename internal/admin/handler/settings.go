package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	contentdomain "lighthouse-restaurant/backend/internal/content/domain"
	"lighthouse-restaurant/backend/internal/server/web"
)

const settingsPath = "/admin/settings"

func (h *Handler) settingsForm(c *gin.Context) {
	s, err := h.deps.Settings.Get(c.Request.Context())
	if err != nil {
		log.Printf("admin: get settings: %v", err)
		web.Redirect(c, web.FlashError, "Error al cargar ajustes", "/admin")
		return
	}
	if s == nil {
		s = &contentdomain.Settings{}
	}
	c.HTML(http.StatusOK, "admin/settings", web.View(c, "Ajustes del Sitio", gin.H{
		"Settings":   *s,
		"HeroImages": h.heroImages(c),
	}))
}

func (h *Handler) saveSettings(c *gin.Context) {
	s := &contentdomain.Settings{
		HeroTitle:     strings.TrimSpace(c.PostForm("hero_title")),
		HeroSubtitle:  strings.TrimSpace(c.PostForm("hero_subtitle")),
		HeroImageURL:  strings.TrimSpace(c.PostForm("hero_image_url")),
		HistoriaHTML:  c.PostForm("historia_html"),
		VisitanosHTML: c.PostForm("visitanos_html"),
		ScheduleJSON:  strings.TrimSpace(c.PostForm("schedule_json")),
		Address:       strings.TrimSpace(c.PostForm("address")),
		Phone:         strings.TrimSpace(c.PostForm("phone")),
		Email:         strings.TrimSpace(c.PostForm("email")),
		MapEmbedURL:   strings.TrimSpace(c.PostForm("map_embed_url")),
		FooterHTML:    c.PostForm("footer_html"),
	}
	if err := s.ValidateSchedule(); err != nil {
		web.Redirect(c, web.FlashError, `El horario debe ser un objeto JSON, por ejemplo {"Lunes": "12:00 - 22:00"}`, settingsPath)
		return
	}
	if err := h.deps.Settings.Save(c.Request.Context(), s); err != nil {
		log.Printf("admin: save settings: %v", err)
		web.Redirect(c, web.FlashError, "Error al guardar ajustes", settingsPath)
		return
	}
	h.logEvent(c, auditdomain.ActionUpdate, "settings", "")
	web.Redirect(c, web.FlashSuccess, "Ajustes guardados", settingsPath)
}
