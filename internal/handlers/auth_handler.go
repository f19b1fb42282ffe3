package handlers

import (
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/connectly/backend/internal/apperrors"
	"github.com/connectly/backend/internal/middleware"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves account registration, login and own-profile endpoints.
type AuthHandler struct {
	users        repositories.UserRepository
	firebaseAuth *auth.Client
	jwtSecret    string
}

func NewAuthHandler(users repositories.UserRepository, firebaseAuth *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{users: users, firebaseAuth: firebaseAuth, jwtSecret: jwtSecret}
}

// RegisterAuthRoutes mounts the unauthenticated auth endpoints.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	if h.firebaseAuth != nil {
		g.POST("/firebase", h.FirebaseLogin, middleware.FirebaseAuthMiddleware(h.firebaseAuth))
	}
}

// RegisterProfileRoutes mounts the JWT-protected own-profile endpoints.
func (h *AuthHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if existing, err := h.users.GetUserByUsernameOrEmail(ctx, req.Username, req.Email); err == nil && existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "Username or email already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	now := time.Now()
	user := &models.User{
		Username:   req.Username,
		Email:      req.Email,
		Password:   string(hashed),
		FullName:   req.FullName,
		Followers:  []primitive.ObjectID{},
		Following:  []primitive.ObjectID{},
		Posts:      []primitive.ObjectID{},
		LastActive: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		logger.L().Error().Err(err).Str("username", req.Username).Msg("failed to create user")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": user})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if user.IsBlocked {
		return httpError(fmt.Errorf("account is blocked: %w", apperrors.ErrForbidden))
	}

	if err := h.users.SetLastActive(ctx, user.ID); err != nil {
		logger.L().Warn().Err(err).Str("user", user.ID.Hex()).Msg("failed to update last active")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

// FirebaseLogin exchanges a Firebase ID token, already verified by the
// middleware, for an API token, creating the account on first sign-in.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	decoded, ok := middleware.FirebaseTokenFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing Firebase token")
	}

	ctx := c.Request().Context()
	user, err := h.users.GetUserByFirebaseUID(ctx, decoded.UID)
	if err != nil {
		email, _ := decoded.Claims["email"].(string)
		name, _ := decoded.Claims["name"].(string)
		if email == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Firebase token has no email claim")
		}
		now := time.Now()
		user = &models.User{
			Username:    email,
			Email:       email,
			FullName:    name,
			FirebaseUID: decoded.UID,
			Followers:   []primitive.ObjectID{},
			Following:   []primitive.ObjectID{},
			Posts:       []primitive.ObjectID{},
			LastActive:  now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := h.users.CreateUser(ctx, user); err != nil {
			logger.L().Error().Err(err).Str("firebase_uid", decoded.UID).Msg("failed to create firebase user")
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
		}
	}
	if user.IsBlocked {
		return httpError(fmt.Errorf("account is blocked: %w", apperrors.ErrForbidden))
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	user, err := h.users.GetUserByID(c.Request().Context(), accountID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), accountID, repositories.ProfileUpdate{
		FullName:       req.FullName,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		CoverPicture:   req.CoverPicture,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:  user.ID.Hex(),
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
