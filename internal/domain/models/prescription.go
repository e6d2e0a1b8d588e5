package models

// EyePrescription holds the refraction values of one eye.
// Dnp and Height are millimetres; zero means not measured.
type EyePrescription struct {
	Sphere   float64 `json:"sphere" bson:"sphere"`
	Cylinder float64 `json:"cylinder" bson:"cylinder"`
	Axis     int     `json:"axis" bson:"axis"`
	Addition float64 `json:"addition" bson:"addition"`
	Dnp      float64 `json:"dnp" bson:"dnp"`
	Height   float64 `json:"height" bson:"height"`
}

// Prescription is an optical prescription kept for a client.
type Prescription struct {
	ID       int64           `json:"id,omitempty" bson:"id,omitempty"`
	ClientID int64           `json:"clientId" bson:"client_id"`
	Doctor   string          `json:"doctor,omitempty" bson:"doctor,omitempty"`
	ExamDate string          `json:"examDate,omitempty" bson:"exam_date,omitempty"`
	RightEye EyePrescription `json:"rightEye" bson:"right_eye"`
	LeftEye  EyePrescription `json:"leftEye" bson:"left_eye"`
	Notes    string          `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Protocol is the lab order attached to a sale containing lenses.
type Protocol struct {
	BookNumber   string       `json:"bookNumber" bson:"book_number"`
	PageNumber   string       `json:"pageNumber" bson:"page_number"`
	ServiceOrder string       `json:"serviceOrder" bson:"service_order"`
	DeliveryDate string       `json:"deliveryDate,omitempty" bson:"delivery_date,omitempty"`
	Prescription Prescription `json:"prescription" bson:"prescription"`
}
