/*
Package handler provides HTTP handler functions for account registration,
login and password recovery.
*/
package handler

import (
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"ecotrade/internal/app/db"
	"ecotrade/internal/app/user"
	"ecotrade/internal/pkg/auth/jwt"
	"ecotrade/internal/pkg/errs"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/randx"
	"ecotrade/internal/pkg/req"
	"ecotrade/internal/pkg/resp"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// resetCodeTTL is how long a password reset code stays usable.
const resetCodeTTL = 15 * time.Minute

func validPassword(p string) bool {
	n := utf8.RuneCountInString(p)
	return n >= 6 && n <= 50
}

func validName(n string) bool {
	l := utf8.RuneCountInString(n)
	return l >= 2 && l <= 50
}

// tokenFor issues the session JWT for an account.
func tokenFor(u *user.User, secret string) (string, error) {
	payload := &jwt.Payload{
		ID:   u.ID.Hex(),
		Name: u.Name,
		Role: u.Role,
	}
	return jwt.GenerateToken(payload, secret, jwt.UserIdentityExpiration)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !validName(input.Name) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}
		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}
		if !validPassword(input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		created, err := deps.Users.Create(r.Context(), &user.User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: string(hashedPassword),
		})
		if err != nil {
			if db.IsDuplicateKey(err) {
				logx.Warn("registration conflict: email already exists", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create account")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		tokenString, err := tokenFor(created, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "failed to generate token after registration")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": tokenString,
			"user":  created,
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies account credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Users.GetByEmail(r.Context(), input.Email)
		if err != nil {
			logx.Warn("login: account fetch failed", "email", input.Email, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !account.IsActive {
			resp.RespondError(w, r, errs.NewError(errs.ErrAccountDisabled))
			return
		}

		if err := deps.Users.TouchLastLogin(r.Context(), account.ID); err != nil {
			logx.Error(err, "login: failed to update last login", "user_id", account.ID.Hex())
		}

		token, err := tokenFor(account, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  account,
		})
	}
}

type ForgotPasswordInput struct {
	Email string `json:"email"`
}

// HandleForgotPassword issues a short-lived reset code and mails it to the
// account's address. The response is identical whether or not the address is
// registered, so the endpoint cannot be used to probe for accounts.
func HandleForgotPassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ForgotPasswordInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		account, err := deps.Users.GetByEmail(r.Context(), input.Email)
		if err == nil {
			code, codeErr := randx.ResetCode()
			if codeErr != nil {
				logx.Error(codeErr, "forgot-password: failed to generate reset code")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}

			expiry := time.Now().Add(resetCodeTTL)
			if err := deps.Users.SetResetCode(r.Context(), account.ID, code, expiry); err != nil {
				logx.Error(err, "forgot-password: failed to store reset code", "user_id", account.ID.Hex())
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}

			body := "Your EcoTrade password reset code is: " + code +
				"\n\nThe code expires in 15 minutes. If you did not request a reset, ignore this message."
			if err := deps.Mailer.Send(account.Email, "EcoTrade password reset", body); err != nil {
				logx.Error(err, "forgot-password: failed to send reset mail", "user_id", account.ID.Hex())
			}
		} else {
			logx.Info("forgot-password requested for unknown address")
		}

		resp.RespondSuccess(w, r, map[string]string{
			"message": "If the address is registered, a reset code has been sent.",
		})
	}
}

type ResetPasswordInput struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// HandleResetPassword swaps the password after verifying the mailed code.
func HandleResetPassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ResetPasswordInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !validPassword(input.NewPassword) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		account, err := deps.Users.GetByEmail(r.Context(), input.Email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrResetCodeInvalid))
			return
		}

		codeValid := account.ResetCode != "" &&
			account.ResetCode == input.Code &&
			account.ResetCodeExpiry != nil &&
			account.ResetCodeExpiry.After(time.Now())
		if !codeValid {
			resp.RespondError(w, r, errs.NewError(errs.ErrResetCodeInvalid))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Users.ResetPassword(r.Context(), account.ID, string(hashedPassword)); err != nil {
			logx.Error(err, "reset-password: failed to update password", "user_id", account.ID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"message": "Password has been reset.",
		})
	}
}

// HandleGetMe returns the authenticated caller's own account document.
func HandleGetMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Users.GetByID(r.Context(), callerID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": account})
	}
}
