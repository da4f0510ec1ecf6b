package scheduling

import "errors"

var (
	ErrProfessionalNotFound = errors.New("profissional não encontrado")
	ErrSlotNotFound         = errors.New("agendamento não encontrado")
	ErrSlotAlreadyBooked    = errors.New("agendamento já reservado")
	ErrSlotTimeTaken        = errors.New("já existe um horário para este profissional")
	ErrMissingTime          = errors.New("horário é obrigatório")
)
