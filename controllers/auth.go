package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/auth"
	"github.com/agendafacil/agenda-api/config"
	"github.com/agendafacil/agenda-api/models"
	"github.com/agendafacil/agenda-api/utils"
)

// TokenRevoker stores a token until its expiry so a logout takes effect
// before the token runs out.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthController handles signup, login, logout and password recovery.
type AuthController struct {
	db       *gorm.DB
	tokens   *auth.TokenService
	mailer   utils.Sender
	denylist TokenRevoker
	cfg      *config.Config
}

func NewAuthController(db *gorm.DB, tokens *auth.TokenService, mailer utils.Sender, denylist TokenRevoker, cfg *config.Config) *AuthController {
	return &AuthController{db: db, tokens: tokens, mailer: mailer, denylist: denylist, cfg: cfg}
}

// Signup registers a new patient account.
func (ac *AuthController) Signup(c *fiber.Ctx) error {
	type signupInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}

	input := new(signupInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Não foi possível interpretar o corpo da requisição",
			Error:   err.Error(),
		})
	}

	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username e password são obrigatórios",
		})
	}
	if !utils.ValidPassword(input.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A senha deve ter no mínimo 8 caracteres, com letra maiúscula, número e símbolo",
		})
	}

	var existing models.User
	if ac.db.Where("username = ?", input.Username).First(&existing).RowsAffected > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Usuário já existe",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao criar usuário",
			Error:   err.Error(),
		})
	}

	user := models.User{
		Username: input.Username,
		Password: string(hashed),
		Role:     models.RolePatient,
	}
	if input.Email != "" {
		user.Email = &input.Email
	}

	if err := ac.db.Create(&user).Error; err != nil {
		// The pre-check above races with concurrent signups; the unique
		// constraint is the authority, so its violation is still a
		// conflict rather than a store failure. It also covers a taken
		// e-mail, which the pre-check does not look at.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Usuário ou e-mail já existe",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao criar usuário",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Usuário criado com sucesso",
		"user":    user,
	})
}

// Login verifies the credentials and issues an access token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type loginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	input := new(loginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Não foi possível interpretar o corpo da requisição",
			Error:   err.Error(),
		})
	}

	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username e password são obrigatórios",
		})
	}

	var user models.User
	if ac.db.Where("username = ?", input.Username).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Usuário não encontrado",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Senha incorreta",
		})
	}

	token, err := ac.tokens.Issue(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao gerar token",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login efetuado com sucesso",
		"token":   token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Logout revokes the presented token for the rest of its lifetime.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": auth.ErrMissingToken.Error(),
		})
	}

	if ac.denylist != nil {
		ttl := time.Duration(0)
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok {
				ttl = time.Until(time.Unix(int64(exp), 0))
			}
		}
		if err := ac.denylist.Revoke(c.Context(), token.Raw, ttl); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
				Message: "Erro ao efetuar logout",
				Error:   err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Logout efetuado com sucesso",
	})
}

// ForgotPassword stores a fresh recovery code on the account and mails
// it to the user.
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	type forgotInput struct {
		Email string `json:"email"`
	}

	input := new(forgotInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Não foi possível interpretar o corpo da requisição",
			Error:   err.Error(),
		})
	}

	if input.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "E-mail é obrigatório",
		})
	}

	var user models.User
	if ac.db.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Usuário não encontrado",
		})
	}

	code := utils.GenerateRecoveryCode()
	expiresAt := time.Now().Add(ac.cfg.RecoveryCodeTTL)
	err := ac.db.Model(&user).Updates(map[string]interface{}{
		"recovery_code":            code,
		"recovery_code_expires_at": expiresAt,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao gerar código de recuperação",
			Error:   err.Error(),
		})
	}

	if err := ac.mailer.SendRecoveryCode(input.Email, user.Username, code); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao enviar o e-mail de recuperação",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "E-mail de recuperação enviado. Verifique sua caixa de entrada.",
	})
}

// ChangePassword resets the password when the recovery code matches and
// has not expired.
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	type changeInput struct {
		Email        string `json:"email"`
		RecoveryCode string `json:"recoveryCode"`
		Password     string `json:"password"`
	}

	input := new(changeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Não foi possível interpretar o corpo da requisição",
			Error:   err.Error(),
		})
	}

	if input.Email == "" || input.RecoveryCode == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "E-mail, código de recuperação e nova senha são obrigatórios",
		})
	}

	var user models.User
	if ac.db.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Usuário não encontrado",
		})
	}

	if user.RecoveryCode == nil || *user.RecoveryCode != input.RecoveryCode {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Código de recuperação incorreto",
		})
	}
	if user.RecoveryCodeExpiresAt == nil || time.Now().After(*user.RecoveryCodeExpiresAt) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Código de recuperação expirado",
		})
	}

	if !utils.ValidPassword(input.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A senha deve ter no mínimo 8 caracteres, com letra maiúscula, número e símbolo",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao alterar senha",
			Error:   err.Error(),
		})
	}

	err = ac.db.Model(&user).Updates(map[string]interface{}{
		"password":                 string(hashed),
		"recovery_code":            nil,
		"recovery_code_expires_at": nil,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao alterar senha",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Senha alterada com sucesso!",
	})
}
