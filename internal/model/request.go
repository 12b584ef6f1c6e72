package model

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterParams is the userRegister input shape. Requests wrap it in a
// top-level "params" object.
type RegisterParams struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	PhoneNumber int64  `json:"phoneNumber"`
	Address     string `json:"address"`
}

func (p RegisterParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(3, 50)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&p.Role, validation.Required, validation.In(RoleUser, RoleAdmin, RoleDeveloper)),
		// 10-digit phone number.
		validation.Field(&p.PhoneNumber, validation.Required, validation.Min(int64(1000000000)), validation.Max(int64(9999999999))),
		validation.Field(&p.Address, validation.Length(0, 200)),
	)
}

type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

type ProfileParams struct {
	UserID string `json:"userId"`
}

func (p ProfileParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UserID, validation.Required, is.UUID),
	)
}
