package handlers

import (
	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/internal/service/wizard"
)

// Form payloads accept the masked text of numeric inputs ("+1,25", "90°", "31,5")
// as well as plain JSON numbers.

type eyeForm struct {
	Sphere   masks.Diopter     `json:"sphere"`
	Cylinder masks.Diopter     `json:"cylinder"`
	Axis     masks.Axis        `json:"axis"`
	Addition masks.Diopter     `json:"addition"`
	Dnp      masks.Millimeters `json:"dnp"`
	Height   masks.Millimeters `json:"height"`
}

func (f eyeForm) model() models.EyePrescription {
	return models.EyePrescription{
		Sphere:   float64(f.Sphere),
		Cylinder: float64(f.Cylinder),
		Axis:     int(f.Axis),
		Addition: float64(f.Addition),
		Dnp:      float64(f.Dnp),
		Height:   float64(f.Height),
	}
}

type prescriptionForm struct {
	ClientID int64   `json:"clientId"`
	Doctor   string  `json:"doctor"`
	ExamDate string  `json:"examDate"`
	RightEye eyeForm `json:"rightEye"`
	LeftEye  eyeForm `json:"leftEye"`
	Notes    string  `json:"notes"`
}

func (f prescriptionForm) model() models.Prescription {
	return models.Prescription{
		ClientID: f.ClientID,
		Doctor:   f.Doctor,
		ExamDate: f.ExamDate,
		RightEye: f.RightEye.model(),
		LeftEye:  f.LeftEye.model(),
		Notes:    f.Notes,
	}
}

type protocolForm struct {
	BookNumber   string           `json:"bookNumber"`
	PageNumber   string           `json:"pageNumber"`
	ServiceOrder string           `json:"serviceOrder"`
	DeliveryDate string           `json:"deliveryDate"`
	Prescription prescriptionForm `json:"prescription"`
}

func (f protocolForm) model() models.Protocol {
	return models.Protocol{
		BookNumber:   f.BookNumber,
		PageNumber:   f.PageNumber,
		ServiceOrder: f.ServiceOrder,
		DeliveryDate: f.DeliveryDate,
		Prescription: f.Prescription.model(),
	}
}

type itemForm struct {
	ProductID    int64                `json:"productId" binding:"required"`
	Quantity     masks.Quantity       `json:"quantity" binding:"required"`
	FrameDetails *models.FrameDetails `json:"frameDetails"`
}

func (f itemForm) request() wizard.AddItemRequest {
	return wizard.AddItemRequest{
		ProductID:    f.ProductID,
		Quantity:     int(f.Quantity),
		FrameDetails: f.FrameDetails,
	}
}

type serviceForm struct {
	ServiceID int64          `json:"serviceId" binding:"required"`
	Quantity  masks.Quantity `json:"quantity"`
}

func (f serviceForm) request() wizard.AddServiceRequest {
	return wizard.AddServiceRequest{ServiceID: f.ServiceID, Quantity: int(f.Quantity)}
}
