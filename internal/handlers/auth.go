package handlers

import (
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// AuthHandler issues local JWTs, either for email/password accounts or in
// exchange for a Firebase ID token.
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuthClient may be nil,
// which disables /firebase-login.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err, "failed to hash password")
	}

	user := &models.User{
		ID:       ids.User(),
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		return apperr.Wrap(err, "failed to create user")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return apperr.Internal(err, "failed to generate token")
	}
	logger.Ctx(c.Request().Context()).Info().Str("user_id", user.ID).Msg("user signed up")
	return created(c, "User registered successfully", authResponse{Token: token, User: user})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return apperr.Wrap(err, "failed to load user")
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return apperr.Internal(err, "failed to generate token")
	}
	return success(c, "Signed in successfully", authResponse{Token: token, User: user})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token, links or creates the matching
// user, and issues a local JWT.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "firebase login is not configured")
	}
	var req FirebaseLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid firebase ID token")
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if email == "" {
		return apperr.Validation("firebase account has no email address")
	}

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, firebaseUID)
	switch {
	case err == nil:
		// Known account; refresh its profile from the token.
		user.Email = strings.ToLower(email)
		if name != "" {
			user.FullName = name
		}
		if err := h.userRepository.UpdateProfile(ctx, user); err != nil {
			return apperr.Wrap(err, "failed to update user")
		}
	case apperr.Is(err, apperr.KindNotFound):
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			user.FirebaseUID = &firebaseUID
			if err := h.userRepository.UpdateProfile(ctx, user); err != nil {
				return apperr.Wrap(err, "failed to link firebase account")
			}
		case apperr.Is(err, apperr.KindNotFound):
			user = &models.User{
				ID:          ids.User(),
				FullName:    name,
				Email:       strings.ToLower(email),
				FirebaseUID: &firebaseUID,
			}
			if err := h.userRepository.CreateUser(ctx, user); err != nil {
				return apperr.Wrap(err, "failed to create user")
			}
		default:
			return apperr.Wrap(err, "failed to load user")
		}
	default:
		return apperr.Wrap(err, "failed to load user")
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return apperr.Internal(err, "failed to generate token")
	}
	return success(c, "Signed in successfully", authResponse{Token: localJWT, User: user})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}
