package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusworks/examport/internal/config"
	"github.com/campusworks/examport/internal/middleware"
	"github.com/campusworks/examport/internal/model"
	"github.com/campusworks/examport/internal/response"
	"github.com/campusworks/examport/internal/stub"
	"github.com/campusworks/examport/internal/validator"
)

// AuthHandler handles login endpoints for the stub backend.
type AuthHandler struct {
	store *stub.Store
	cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store *stub.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Authenticates a student by matric number and password.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if fields := validator.Check(req); fields != nil {
		response.Fail(c, http.StatusBadRequest, firstMessage(fields))
		return
	}

	student, err := h.store.AuthenticateStudent(req.MatricNo, req.Password)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "Invalid matric number or password")
		return
	}

	response.OK(c, http.StatusOK, "Login successful", student)
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Authenticates an administrator and issues a bearer token.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if fields := validator.Check(req); fields != nil {
		response.Fail(c, http.StatusBadRequest, firstMessage(fields))
		return
	}

	if err := h.store.AuthenticateAdmin(req.Email, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.signAdminToken(req.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}

	response.OK(c, http.StatusOK, "Login successful", model.AdminSession{AccessToken: token})
}

func (h *AuthHandler) signAdminToken(email string) (string, error) {
	now := time.Now()
	claims := middleware.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.JWTExpiry)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// firstMessage flattens a field-error map into a single message; the stub
// keeps the envelope's message field scalar like the real platform does.
func firstMessage(fields map[string]string) string {
	for _, msg := range fields {
		return msg
	}
	return "Validation failed"
}
