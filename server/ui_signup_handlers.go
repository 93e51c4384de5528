package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-chat-gate/auth"
	"github.com/rs/zerolog/log"
)

const (
	MsgSignedUp    = "You have been signed up successfully! Now login your details"
	MsgSystemFault = "Something went wrong, please try again."
)

// SignupPostHandler runs the registration flow for the sign-up form
func (s *Server) SignupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		input := auth.RegistrationInput{
			FirstName:     r.PostFormValue(auth.FieldFirstName),
			LastName:      r.PostFormValue(auth.FieldLastName),
			Username:      r.PostFormValue(auth.FieldUsername),
			Email:         r.PostFormValue(auth.FieldEmail),
			Password:      r.PostFormValue(auth.FieldPassword),
			TermsAccepted: auth.IsChecked(r.PostFormValue(auth.FieldTerms)),
		}
		data := PageData{Form: signupFormValues(input)}

		_, err := s.auth.Register(r.Context(), input)

		var (
			validationErr *auth.ValidationError
			conflictErr   *auth.ConflictError
		)
		switch {
		case err == nil:
			s.pushFlash(r, MsgSignedUp)
			redirectSuccess(w, r, RouteLogin)
		case errors.As(err, &validationErr):
			data.Errors = validationErr.Fields
			s.renderPage(w, r, PageHome, data)
		case errors.As(err, &conflictErr):
			s.pushFlash(r, conflictErr.Message)
			s.renderPage(w, r, PageHome, data)
		default:
			log.Error().Err(err).Msg("registration failed")
			s.pushFlash(r, MsgSystemFault)
			redirectSuccess(w, r, RouteHome)
		}
	}
}

func signupFormValues(input auth.RegistrationInput) map[string]string {
	values := map[string]string{
		auth.FieldFirstName: input.FirstName,
		auth.FieldLastName:  input.LastName,
		auth.FieldUsername:  input.Username,
		auth.FieldEmail:     input.Email,
	}
	if input.TermsAccepted {
		values[auth.FieldTerms] = "on"
	}
	return values
}
