package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"eventhub-be/internal/apperror"
	"eventhub-be/internal/service"
)

type QRCodeController struct {
	eventService service.EventService
	baseURL      string
}

func NewQRCodeController(eventService service.EventService, baseURL string) *QRCodeController {
	return &QRCodeController{
		eventService: eventService,
		baseURL:      baseURL,
	}
}

// GenerateQRCode handles GET /api/events/:id/qrcode - a PNG linking to the
// event's page on the frontend.
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	event, err := qc.eventService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	eventURL := qc.baseURL + "/events/" + event.ID

	// Generate QR code (256x256 pixels, medium error recovery)
	qrCode, err := qrcode.New(eventURL, qrcode.Medium)
	if err != nil {
		respondError(c, apperror.NewInternal("Failed to generate QR code", err))
		return
	}

	pngData, err := qrCode.PNG(256)
	if err != nil {
		respondError(c, apperror.NewInternal("Failed to generate QR code image", err))
		return
	}

	c.Header("Content-Disposition", "inline; filename=event-"+event.ID+".png")
	c.Data(http.StatusOK, "image/png", pngData)
}
