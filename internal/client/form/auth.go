package form

import (
	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/models"
)

// Login is the sign-in form. ByEmail selects how Identifier is read.
type Login struct {
	Identifier string
	ByEmail    bool
	Password   string
}

// Validate checks the form and returns Errors on failure.
func (l Login) Validate() error {
	errs := Errors{}
	switch {
	case blank(l.Identifier) && l.ByEmail:
		errs["identifier"] = "Email is required"
	case blank(l.Identifier):
		errs["identifier"] = "Username is required"
	case l.ByEmail && !ValidEmail(l.Identifier):
		errs["identifier"] = "Please enter a valid email address"
	}
	switch {
	case l.Password == "":
		errs["password"] = "Password is required"
	case tooShort(l.Password, 6):
		errs["password"] = "Password must be at least 6 characters"
	}
	return errs.orNil()
}

// Credentials converts the form into the login request body.
func (l Login) Credentials() models.Credentials {
	if l.ByEmail {
		return models.Credentials{Email: l.Identifier, Password: l.Password}
	}
	return models.Credentials{Username: l.Identifier, Password: l.Password}
}

// Registration is the sign-up form.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Avatar          *api.Upload
	CoverImage      *api.Upload
}

// Validate checks the form and returns Errors on failure.
func (r Registration) Validate() error {
	errs := Errors{}
	switch {
	case blank(r.Username):
		errs["username"] = "Username is required"
	case tooShort(r.Username, 3):
		errs["username"] = "Username must be at least 3 characters"
	}
	switch {
	case blank(r.Email):
		errs["email"] = "Email is required"
	case !ValidEmail(r.Email):
		errs["email"] = "Please enter a valid email address"
	}
	switch {
	case r.Password == "":
		errs["password"] = "Password is required"
	case tooShort(r.Password, 8):
		errs["password"] = "Password must be at least 8 characters"
	}
	switch {
	case r.ConfirmPassword == "":
		errs["confirmPassword"] = "Please confirm your password"
	case r.Password != r.ConfirmPassword:
		errs["confirmPassword"] = "Passwords do not match"
	}
	if blank(r.FullName) {
		errs["fullName"] = "Full name is required"
	}
	if r.Avatar != nil {
		if msg := checkImage(*r.Avatar); msg != "" {
			errs["avatar"] = msg
		}
	}
	if r.CoverImage != nil {
		if msg := checkImage(*r.CoverImage); msg != "" {
			errs["coverImage"] = msg
		}
	}
	return errs.orNil()
}

// Form builds the multipart register body. The confirmation is not sent.
func (r Registration) Form() *api.Form {
	f := api.NewForm().
		Set("username", r.Username).
		Set("email", r.Email).
		Set("password", r.Password).
		Set("fullName", r.FullName)
	if r.Avatar != nil {
		f.Upload("avatar", *r.Avatar)
	}
	if r.CoverImage != nil {
		f.Upload("coverImage", *r.CoverImage)
	}
	return f
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// Validate checks the form. Errors are reported under "password".
func (p PasswordChange) Validate() error {
	switch {
	case p.New != p.Confirm:
		return Errors{"password": "New passwords do not match"}
	case tooShort(p.New, 8):
		return Errors{"password": "Password must be at least 8 characters"}
	}
	return nil
}

// Request converts the form into the request body.
func (p PasswordChange) Request() models.PasswordChange {
	return models.PasswordChange{CurrentPassword: p.Current, NewPassword: p.New}
}

// Profile is the account details form.
type Profile struct {
	FullName string
	Email    string
}

// Validate requires a valid e-mail when one is given.
func (p Profile) Validate() error {
	if p.Email != "" && !ValidEmail(p.Email) {
		return Errors{"email": "Please enter a valid email address"}
	}
	if blank(p.FullName) && p.Email == "" {
		return Errors{"profile": "Nothing to update"}
	}
	return nil
}

// Request converts the form into the request body.
func (p Profile) Request() models.UserDetails {
	return models.UserDetails{FullName: p.FullName, Email: p.Email}
}
