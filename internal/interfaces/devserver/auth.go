package devserver

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erp/posconsole/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	tokenCookieName = "token"
	bearerPrefix    = "Bearer "
	claimsKey       = "jwt_claims"
)

// Claims are the claims of issued access tokens
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// JWTService issues and validates HS256 access tokens
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTService creates a token service
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), ttl: ttl, issuer: "posconsole-devserver", now: time.Now}
}

// Issue creates a signed token for username
func (s *JWTService) Issue(userID, username, role string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: username,
		Role:     role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate parses and verifies a token
func (s *JWTService) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AuthMiddleware rejects requests without a valid bearer token, falling back
// to the token cookie set at login
func AuthMiddleware(jwtService *JWTService, log *zap.Logger) gin.HandlerFunc {
	h := &BaseHandler{}
	return func(c *gin.Context) {
		token := ""
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
			token = strings.TrimPrefix(header, bearerPrefix)
		} else if cookie, err := c.Cookie(tokenCookieName); err == nil {
			token = cookie
		}
		if token == "" {
			h.Unauthorized(c, "Authentication required")
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token has expired"
			}
			log.Warn("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			h.Unauthorized(c, message)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Account is the single login accepted by the dev server
type Account struct {
	Username string
	Password string
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

// AuthHandler handles login and logout
type AuthHandler struct {
	BaseHandler
	jwt     *JWTService
	account Account
	userID  string
}

// NewAuthHandler creates an auth handler for account
func NewAuthHandler(jwtService *JWTService, account Account) *AuthHandler {
	return &AuthHandler{jwt: jwtService, account: account, userID: uuid.NewString()}
}

// Login checks the credentials, returns a token and sets it as a cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.account.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.account.Password)) == 1
	if !userOK || !passOK {
		logger.GetGinLogger(c).Info("login rejected", zap.String("username", req.Username))
		h.Unauthorized(c, "Tên đăng nhập hoặc mật khẩu không đúng")
		return
	}
	token, expires, err := h.jwt.Issue(h.userID, req.Username, "admin")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookieName, token, int(time.Until(expires).Seconds()), "/", "", false, true)
	h.Success(c, loginResponse{
		Token:     token,
		ExpiresAt: expires,
		User: userResponse{
			ID:       h.userID,
			Username: req.Username,
			FullName: "Quản trị viên",
			Role:     "admin",
		},
	})
}

// Logout clears the token cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(tokenCookieName, "", -1, "/", "", false, true)
	h.SuccessWithMessage(c, "Đăng xuất thành công")
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	v, _ := c.Get(claimsKey)
	claims, ok := v.(*Claims)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, userResponse{ID: claims.Subject, Username: claims.Username, Role: claims.Role})
}
