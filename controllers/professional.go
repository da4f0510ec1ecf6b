package controllers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/models"
	"github.com/agendafacil/agenda-api/utils"
)

// ProfessionalController manages professional profiles.
type ProfessionalController struct {
	db *gorm.DB
}

func NewProfessionalController(db *gorm.DB) *ProfessionalController {
	return &ProfessionalController{db: db}
}

// Create registers a professional: the account and the profile are
// written in one transaction so a failure on the second row cannot leave
// an orphaned user behind.
func (pc *ProfessionalController) Create(c *fiber.Ctx) error {
	type createInput struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		Specialty string `json:"specialty"`
	}

	input := new(createInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Não foi possível interpretar o corpo da requisição",
			Error:   err.Error(),
		})
	}

	if input.Username == "" || input.Password == "" || input.Email == "" || input.Name == "" || input.Specialty == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Todos os campos são obrigatórios",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao criar profissional",
			Error:   err.Error(),
		})
	}

	user := models.User{
		Username: input.Username,
		Password: string(hashed),
		Email:    &input.Email,
		Role:     models.RoleProfessional,
	}
	professional := models.Professional{
		Name:      input.Name,
		Specialty: input.Specialty,
	}

	err = pc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		professional.UserID = user.ID
		return tx.Create(&professional).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao criar profissional",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Usuário criado com sucesso",
		"user":         user,
		"professional": professional,
	})
}

// List returns every registered professional.
func (pc *ProfessionalController) List(c *fiber.Ctx) error {
	var professionals []models.Professional
	if err := pc.db.Find(&professionals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao buscar profissionais",
			Error:   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"professionals": professionals,
	})
}
