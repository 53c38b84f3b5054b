package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"contact_book/internal/middleware"
	"contact_book/internal/model"
	"contact_book/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactHandler handles contact CRUD requests
type ContactHandler struct {
	service service.ContactService
	log     *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(s service.ContactService, log *zap.Logger) *ContactHandler {
	return &ContactHandler{service: s, log: log}
}

// getActor reads the authenticated identity the JWT middleware stowed in
// the context
func getActor(c *gin.Context) (service.Actor, error) {
	userIDVal, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		return service.Actor{}, errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(int)
	if !ok {
		return service.Actor{}, errors.New("invalid user ID type in context")
	}

	rolesVal, exists := c.Get(middleware.AuthRolesKey)
	if !exists {
		return service.Actor{}, errors.New("roles not found in context")
	}
	roles, ok := rolesVal.([]string)
	if !ok {
		return service.Actor{}, errors.New("invalid roles type in context")
	}
	return service.Actor{ID: userID, Roles: roles}, nil
}

// optionalImage fetches the profileImageFile form part, nil when absent
func optionalImage(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile("profileImageFile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return fh, nil
}

func (h *ContactHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	contacts, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		h.log.Error("failed to list contacts", zap.Int("user_id", actor.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to retrieve contacts")
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	respond(c, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	contact, err := h.service.Get(c.Request.Context(), actor, contactID)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("failed to get contact", zap.Int64("contact_id", contactID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to retrieve contact")
		return
	}
	respond(c, http.StatusOK, contact)
}

func (h *ContactHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req model.CreateContactRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Firstname, lastname and phone are required: "+err.Error())
		return
	}

	image, err := optionalImage(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid profileImageFile upload: "+err.Error())
		return
	}

	contact, err := h.service.Create(c.Request.Context(), actor, req, image)
	if err != nil {
		h.writeContactError(c, err, "failed to create contact")
		return
	}
	respond(c, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	var req model.UpdateContactRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	image, err := optionalImage(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid profileImageFile upload: "+err.Error())
		return
	}

	contact, err := h.service.Update(c.Request.Context(), actor, contactID, req, image)
	if err != nil {
		h.writeContactError(c, err, "failed to update contact")
		return
	}
	respond(c, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, contactID); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("failed to delete contact", zap.Int64("contact_id", contactID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to delete contact")
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": contactID})
}

func (h *ContactHandler) GetImage(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	rc, name, err := h.service.OpenImage(c.Request.Context(), actor, contactID)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) || errors.Is(err, service.ErrNoImage) {
			respondError(c, http.StatusNotFound, "Profile image not found")
			return
		}
		h.log.Error("failed to open profile image", zap.Int64("contact_id", contactID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to retrieve profile image")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// writeContactError maps contact service errors to HTTP statuses
func (h *ContactHandler) writeContactError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPhoneTaken):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBlankField),
		errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrInvalidImageType):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(logMsg, zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Operation failed")
	}
}

// RegisterContactRoutes registers contact routes on the /api group
func (h *ContactHandler) RegisterContactRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	contacts := rg.Group("/contacts")
	contacts.Use(authMW)
	{
		contacts.GET("", h.List)
		contacts.POST("", h.Create)
		contacts.GET("/:id", h.Get)
		contacts.PUT("/:id", h.Update)
		contacts.DELETE("/:id", h.Delete)
		contacts.GET("/:id/image", h.GetImage)
	}
}
