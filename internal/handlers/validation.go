package handlers

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strings"
	"unicode"

	"ecommerce/internal/apperr"
	"ecommerce/internal/models"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/microcosm-cc/bluemonday"
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

const maxBodyBytes = 1 << 20

// Display names are plain text; markup is stripped before validation.
var namePolicy = bluemonday.StrictPolicy()

func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(s)))
}

var errWeakPassword = errors.New("must be at least 8 characters long and include uppercase, lowercase, digit, and special character")

func strongPassword(value interface{}) error {
	s, _ := value.(string)
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if len([]rune(s)) < 8 || !lower || !upper || !digit || !special {
		return errWeakPassword
	}
	return nil
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *signupRequest) normalize() {
	r.Name = plainText(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Role == "" {
		r.Role = models.RoleUser
	}
}

func (r signupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(2, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.By(strongPassword)),
		validation.Field(&r.Role, validation.In(models.RoleAdmin, models.RoleUser)),
	)
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r signinRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r forgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.By(strongPassword)),
	)
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r refreshTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// decodeAndValidate reads a JSON body into dst and runs its rules.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst validation.Validatable) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if n, ok := dst.(interface{ normalize() }); ok {
		n.normalize()
	}
	if err := dst.Validate(); err != nil {
		return apperr.New(apperr.KindValidation, err.Error())
	}
	return nil
}
