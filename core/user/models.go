package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursecatalog/backend/core"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	MiddleName   string    `db:"middle_name" json:"middle_name"`
	Login        string    `db:"login" json:"login"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // UTC
}

// FullName is "last first middle", without the trailing space when there is no middle name.
func (u User) FullName() string {
	return strings.TrimSpace(strings.Join([]string{u.LastName, u.FirstName, u.MiddleName}, " "))
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName       string `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" form:"last_name" validate:"required,max=100"`
	MiddleName      string `json:"middle_name" form:"middle_name" validate:"max=100"`
	Login           string `json:"login" form:"login" validate:"required,min=3,max=100,alphanum_"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.MiddleName = core.CleanString(nu.MiddleName)
	nu.Login = core.CleanString(nu.Login, true /* lower */)
	return validate.Struct(nu)
}

// ResetUserPassword sets a new password for an existing User.
type ResetUserPassword struct {
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`

	usr User
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// Credentials are what a User logs in with.
type Credentials struct {
	Login    string `json:"login" form:"login" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
