package dto

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"emailId" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"emailId" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
