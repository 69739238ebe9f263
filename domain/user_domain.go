package domain

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "login successful"
	MessageSuccessLogout         = "logout successful"
	MessageSuccessGetUsers       = "success get users"
	MessageSuccessGetUser        = "success get user"
	MessageSuccessSetPassword    = "password changed successfully"
	MessageSuccessUpdateAvatar   = "avatar updated successfully"
	MessageSuccessDeleteAvatar   = "avatar deleted successfully"
	MessageFailedRegister        = "failed to register user"
	MessageFailedLogin           = "failed to login"
	MessageFailedGetUsers        = "failed to get users"
	MessageFailedGetUser         = "failed to get user"
	MessageFailedSetPassword     = "failed to change password"
	MessageFailedUpdateAvatar    = "failed to update avatar"
	MessageFailedDeleteAvatar    = "failed to delete avatar"
	MessageFailedUnauthenticated = "authentication required"

	ErrUserNotFound           = newError(ErrNotFound, "user not found")
	ErrEmailAlreadyExists     = newError(ErrConflict, "the email has been already registered")
	ErrUsernameAlreadyExists  = newError(ErrConflict, "the username is already taken")
	ErrUserAlreadyExists      = newError(ErrConflict, "a user with these credentials already exists")
	ErrInvalidCredentials     = newError(ErrValidation, "unable to log in with provided credentials")
	ErrInvalidCurrentPassword = newError(ErrValidation, "current password is incorrect")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=150,username"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
		Password  string `json:"password" validate:"required,min=8,max=72"`
	}

	RegisterResponse struct {
		Email     string `json:"email"`
		ID        string `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		AuthToken string `json:"auth_token"`
	}

	SetPasswordRequest struct {
		NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
		CurrentPassword string `json:"current_password" validate:"required"`
	}

	AvatarRequest struct {
		Avatar string `json:"avatar" validate:"required"`
	}

	AvatarResponse struct {
		Avatar string `json:"avatar"`
	}

	UserResponse struct {
		Email        string  `json:"email"`
		ID           string  `json:"id"`
		Username     string  `json:"username"`
		FirstName    string  `json:"first_name"`
		LastName     string  `json:"last_name"`
		Avatar       *string `json:"avatar"`
		IsSubscribed bool    `json:"is_subscribed"`
	}
)
