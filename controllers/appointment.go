package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/middleware"
	"github.com/agendafacil/agenda-api/models"
	"github.com/agendafacil/agenda-api/scheduling"
	"github.com/agendafacil/agenda-api/utils"
)

// AppointmentController exposes the slot lifecycle over HTTP.
type AppointmentController struct {
	db  *gorm.DB
	svc *scheduling.Service
}

func NewAppointmentController(db *gorm.DB, svc *scheduling.Service) *AppointmentController {
	return &AppointmentController{db: db, svc: svc}
}

type slotInput struct {
	AppointmentTime time.Time `json:"appointmentTime"`
}

// CreateForSelf opens a slot for the calling professional.
func (apc *AppointmentController) CreateForSelf(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Token não fornecido",
		})
	}

	var professional models.Professional
	if err := apc.db.Where("user_id = ?", claims.UserID).First(&professional).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Profissional não encontrado",
		})
	}

	return apc.createSlot(c, professional.ID)
}

// CreateForProfessional opens a slot on a given professional's behalf.
func (apc *AppointmentController) CreateForProfessional(c *fiber.Ctx) error {
	professionalID, err := c.ParamsInt("professionalId")
	if err != nil || professionalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Profissional é obrigatório",
		})
	}
	return apc.createSlot(c, uint(professionalID))
}

func (apc *AppointmentController) createSlot(c *fiber.Ctx, professionalID uint) error {
	input := new(slotInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Não foi possível interpretar o corpo da requisição",
			Error:   err.Error(),
		})
	}

	appointment, err := apc.svc.CreateSlot(professionalID, input.AppointmentTime)
	if err != nil {
		return apc.lifecycleError(c, err, "Erro ao criar agendamento")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Agendamento criado com sucesso",
		"appointment": appointment,
	})
}

// ListOwn returns the calling professional's slots with their occupants.
func (apc *AppointmentController) ListOwn(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Token não fornecido",
		})
	}

	var professional models.Professional
	if err := apc.db.Where("user_id = ?", claims.UserID).First(&professional).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Profissional não encontrado",
		})
	}

	appointments, err := apc.svc.ByProfessional(professional.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao listar agendamentos",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
	})
}

// ListByProfessional returns every slot of the given professional.
func (apc *AppointmentController) ListByProfessional(c *fiber.Ctx) error {
	professionalID, err := c.ParamsInt("professionalId")
	if err != nil || professionalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Profissional é obrigatório",
		})
	}

	appointments, err := apc.svc.ByProfessional(uint(professionalID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao buscar agendamentos",
			Error:   err.Error(),
		})
	}

	if len(appointments) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Nenhum agendamento encontrado para este profissional.",
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
	})
}

// ListAvailable returns a professional's open slots.
func (apc *AppointmentController) ListAvailable(c *fiber.Ctx) error {
	professionalID := c.QueryInt("professionalId")
	if professionalID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Profissional é obrigatório",
		})
	}

	appointments, err := apc.svc.AvailableByProfessional(uint(professionalID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao listar disponibilidade",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
	})
}

// MyAppointments returns the slots booked by the caller.
func (apc *AppointmentController) MyAppointments(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Token não fornecido",
		})
	}

	appointments, err := apc.svc.ByPatient(claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Erro ao listar agendamentos",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
	})
}

// Claim books the slot for the caller.
func (apc *AppointmentController) Claim(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Token não fornecido",
		})
	}

	id, err := c.ParamsInt("appointmentId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "ID do agendamento inválido ou não fornecido.",
		})
	}

	appointment, err := apc.svc.ClaimSlot(uint(id), claims.UserID)
	if err != nil {
		return apc.lifecycleError(c, err, "Erro ao atualizar agendamento")
	}

	return c.JSON(fiber.Map{
		"message":     "Agendamento atualizado com sucesso",
		"appointment": appointment,
	})
}

// Release reopens the slot.
func (apc *AppointmentController) Release(c *fiber.Ctx) error {
	id, err := c.ParamsInt("appointmentId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "ID do agendamento inválido ou não fornecido.",
		})
	}

	appointment, err := apc.svc.ReleaseSlot(uint(id))
	if err != nil {
		return apc.lifecycleError(c, err, "Erro ao atualizar agendamento")
	}

	return c.JSON(fiber.Map{
		"message":     "Agendamento removido e status alterado para DISPONIVEL com sucesso",
		"appointment": appointment,
	})
}

// Delete removes the slot regardless of its state.
func (apc *AppointmentController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("appointmentId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "ID do agendamento inválido ou não fornecido.",
		})
	}

	if err := apc.svc.DeleteSlot(uint(id)); err != nil {
		return apc.lifecycleError(c, err, "Erro ao excluir agendamento")
	}

	return c.JSON(fiber.Map{
		"message": "Agendamento excluído com sucesso",
	})
}

// lifecycleError maps the scheduling error kinds onto HTTP statuses;
// anything unrecognized is an internal failure with the store's message
// attached.
func (apc *AppointmentController) lifecycleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, scheduling.ErrMissingTime):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, scheduling.ErrProfessionalNotFound),
		errors.Is(err, scheduling.ErrSlotNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, scheduling.ErrSlotAlreadyBooked),
		errors.Is(err, scheduling.ErrSlotTimeTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: fallback,
			Error:   err.Error(),
		})
	}
}
