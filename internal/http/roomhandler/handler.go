package roomhandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"planningpoker/internal/services/rooms"
)

const qrSize = 320 // mobile-friendly size

type Handler struct {
	svc rooms.IRoomService
}

func New(svc rooms.IRoomService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/api/rooms", h.create)
	r.GET("/api/rooms/:slug", h.info)
	r.GET("/api/rooms/:slug/qr", h.qr)
}

// @Summary		Create a room
// @Description	Creates a planning poker room. A private room without a usable access code is left unprotected.
// @Tags			Rooms
// @Param			body	body		CreateRoomBody	true	"Room payload"
// @Success		201		{object}	RoomResponse
// @Failure		400		{object}	ErrorResponse
// @Failure		500		{object}	ErrorResponse
// @Router			/api/rooms [post]
func (h *Handler) create(ginCtx *gin.Context) {
	var body CreateRoomBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: `the room "name" field is required`})
		return
	}

	slug, r, err := h.svc.CreateRoom(ginCtx.Request.Context(), body.Name, body.Private, body.AccessCode)
	if err != nil {
		zap.L().Error("rooms.create", zap.Error(err))
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: "internal error while creating the room"})
		return
	}
	ginCtx.JSON(http.StatusCreated, RoomResponse{Slug: slug, Name: r.Name, Private: r.Private})
}

// @Summary		Get room metadata
// @Description	Returns the public metadata of a room. Participants and votes are only available over the websocket.
// @Tags			Rooms
// @Param			slug	path		string	true	"Room slug"	default(sprint-42-planning-k3x9)
// @Success		200		{object}	RoomResponse
// @Failure		404		{object}	ErrorResponse
// @Failure		500		{object}	ErrorResponse
// @Router			/api/rooms/{slug} [get]
func (h *Handler) info(ginCtx *gin.Context) {
	slug := ginCtx.Param("slug")
	r, err := h.svc.GetRoom(ginCtx.Request.Context(), slug)
	if err != nil {
		h.fail(ginCtx, err)
		return
	}
	ginCtx.JSON(http.StatusOK, RoomResponse{Slug: slug, Name: r.Name, Private: r.Private})
}

// @Summary		Room share QR code
// @Description	PNG QR code pointing at the room page, for joining from a phone.
// @Tags			Rooms
// @Produce		png
// @Param			slug	path	string	true	"Room slug"	default(sprint-42-planning-k3x9)
// @Success		200
// @Failure		404	{object}	ErrorResponse
// @Router			/api/rooms/{slug}/qr [get]
func (h *Handler) qr(ginCtx *gin.Context) {
	slug := ginCtx.Param("slug")
	if _, err := h.svc.GetRoom(ginCtx.Request.Context(), slug); err != nil {
		h.fail(ginCtx, err)
		return
	}

	png, err := qrcode.Encode(roomURL(ginCtx.Request, slug), qrcode.Medium, qrSize)
	if err != nil {
		zap.L().Error("rooms.qr", zap.String("slug", slug), zap.Error(err))
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: "qr generation failed"})
		return
	}
	ginCtx.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) fail(ginCtx *gin.Context, err error) {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound), errors.Is(err, rooms.ErrMissingRoom):
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: "room not found"})
	default:
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: "internal error while loading the room"})
	}
}

// roomURL derives the public room page address, respecting TLS and
// X-Forwarded-Proto.
func roomURL(r *http.Request, slug string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host + "/room/" + slug
}
