package echodevapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/core/user"
)

const (
	contextTokenKey = "userToken"
	audience        = "Masomo Portal"

	msgInvalidCredentials = "Invalid credentials"
	msgRegistered         = "Registration successful."
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func newJWTConfig(secret string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (s *server) userClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.Conf.AppName,
			Subject:   usr.ID,
			Audience:  audience,
			ExpiresAt: now.Add(s.Conf.DevAPI.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Role:  usr.Role,
	}
}

// generateToken generates a signed JWT token string representing the user Claims.
func (s *server) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextIdentity describes the token holder, for log entries.
func contextIdentity(ctx echo.Context) (session.Identity, bool) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return session.Identity{}, false
	}
	return session.Identity{ID: claims.Subject, Email: claims.Email, Role: session.NormalizeRole(claims.Role)}, true
}

type (
	authAPI struct {
		s *server
	}

	userPayload struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	loginResponse struct {
		Token string      `json:"token"`
		User  userPayload `json:"user"`
	}
)

func registerAuthAPI(g *echo.Group, s *server) {
	api := authAPI{s: s}

	ag := g.Group("/Auth")
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
}

// login answers failures with a plain text body, as the records API does.
func (api *authAPI) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := api.s.Validate.Struct(data); err != nil {
		return ctx.String(http.StatusUnauthorized, msgInvalidCredentials)
	}

	usr, err := api.s.Users.Authenticate(data.Email, data.Password)
	if err != nil {
		if err == user.ErrInvalidCredentials {
			api.s.Logger.Info("login refused", map[string]interface{}{"email": data.Email})
			return ctx.String(http.StatusUnauthorized, msgInvalidCredentials)
		}
		return errors.Wrap(err, "authenticating user")
	}

	token, err := api.s.generateToken(api.s.userClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, loginResponse{
		Token: token,
		User:  userPayload{ID: usr.ID, Email: usr.Email, Username: usr.Username(), Role: usr.Role},
	})
}

func (api *authAPI) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := api.s.Users.Register(data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}

	api.s.Logger.Info("account registered", map[string]interface{}{"id": usr.ID, "role": usr.Role})
	return ctx.JSON(http.StatusCreated, echo.Map{"message": msgRegistered})
}

