package profile

import (
	"io"
	"net/http"
	"strings"
	"time"

	"todoboard/internal/app/attachment"
	"todoboard/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler interface {
	GetProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
}

type handler struct {
	service Service
	logger  *zap.SugaredLogger
}

func NewHandler(service Service, logger *zap.Logger) Handler {
	return &handler{
		service: service,
		logger:  logger.Sugar(),
	}
}

// @Summary Get profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/profile [get]
func (h *handler) GetProfile(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update profile
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param nickname formData string false "Nickname"
// @Param first_name formData string false "First name"
// @Param last_name formData string false "Last name"
// @Param birth_date formData string false "Birth date (YYYY-MM-DD)"
// @Param phone_number formData string false "Phone number"
// @Param avatar formData file false "Avatar image"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/profile [put]
func (h *handler) UpdateProfile(c *gin.Context) {
	var form UpdateProfileForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	in := UpdateInput{
		Nickname:    strings.TrimSpace(form.Nickname),
		FirstName:   strings.TrimSpace(form.FirstName),
		LastName:    strings.TrimSpace(form.LastName),
		PhoneNumber: strings.TrimSpace(form.PhoneNumber),
	}
	if form.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", form.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "birth_date must be YYYY-MM-DD"})
			return
		}
		in.BirthDate = &birth
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		in.Avatar = &attachment.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		}
	}

	resp, err := h.service.Update(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		h.logger.Warnw("Profile update failed", "user_id", auth.UserID(c), "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
