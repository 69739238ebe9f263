package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/metrics"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/jwt"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const avatarFolder = "avatars"

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		GetMe(ctx context.Context, userID string) (domain.UserResponse, error)
		GetUser(ctx context.Context, id string, viewerID string) (domain.UserResponse, error)
		GetUsers(ctx context.Context, p domain.PaginationRequest, viewerID string) ([]domain.UserResponse, int64, error)
		SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error
		UpdateAvatar(ctx context.Context, userID string, req domain.AvatarRequest) (domain.AvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID string) error
	}

	// SubscriptionLookup reports which of the given authors a user follows.
	SubscriptionLookup interface {
		GetSubscribedAuthorIDs(ctx context.Context, subscriberID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	}

	userService struct {
		userRepository UserRepository
		subscriptions  SubscriptionLookup
		jwtService     jwt.JWTService
		s3             storage.AwsS3
		log            *logrus.Logger
	}
)

func NewUserService(
	userRepository UserRepository,
	subscriptions SubscriptionLookup,
	jwtService jwt.JWTService,
	s3 storage.AwsS3,
	log *logrus.Logger,
) UserService {
	return &userService{
		userRepository: userRepository,
		subscriptions:  subscriptions,
		jwtService:     jwtService,
		s3:             s3,
		log:            log,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	email := strings.TrimSpace(req.Email)

	exists, err := s.userRepository.CheckEmail(ctx, email)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if exists {
		return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
	}

	exists, err = s.userRepository.CheckUsername(ctx, req.Username)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if exists {
		return domain.RegisterResponse{}, domain.ErrUsernameAlreadyExists
	}

	hash, err := hashPassword("password", req.Password)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user := &entities.User{
		Email:     email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RegisterResponse{}, s.duplicateUserError(ctx, email, req.Username)
		}
		return domain.RegisterResponse{}, err
	}

	metrics.UsersRegistered.Inc()
	s.log.WithField("user_id", user.ID).Info("user registered")

	return domain.RegisterResponse{
		Email:     user.Email,
		ID:        user.ID.String(),
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), domain.RoleUser)
	if err != nil {
		return domain.LoginResponse{}, errors.Wrap(err, "generate token")
	}
	return domain.LoginResponse{AuthToken: token}, nil
}

func (s *userService) GetMe(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return ToUserResponse(user, false), nil
}

func (s *userService) GetUser(ctx context.Context, id string, viewerID string) (domain.UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return domain.UserResponse{}, err
	}

	subscribed, err := s.subscribedTo(ctx, viewerID, []uuid.UUID{user.ID})
	if err != nil {
		return domain.UserResponse{}, err
	}
	return ToUserResponse(user, subscribed[user.ID]), nil
}

func (s *userService) GetUsers(ctx context.Context, p domain.PaginationRequest, viewerID string) ([]domain.UserResponse, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, p.Limit, utils.Offset(p))
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	subscribed, err := s.subscribedTo(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.UserResponse, 0, len(users))
	for _, user := range users {
		res = append(res, ToUserResponse(user, subscribed[user.ID]))
	}
	return res, count, nil
}

func (s *userService) SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.Password, req.CurrentPassword) {
		return domain.ErrInvalidCurrentPassword
	}

	hash, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, user.ID, hash)
}

// hashPassword rejects passwords bcrypt cannot hash as a validation error
// on field.
func hashPassword(field, password string) (string, error) {
	if len(password) > domain.MaxLengthPassword {
		return "", domain.NewValidationError(field, fmt.Sprintf("ensure this field has no more than %d bytes", domain.MaxLengthPassword))
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return hash, nil
}

// duplicateUserError names the column a concurrent registration took.
func (s *userService) duplicateUserError(ctx context.Context, email, username string) error {
	if taken, err := s.userRepository.CheckEmail(ctx, email); err == nil && taken {
		return domain.ErrEmailAlreadyExists
	}
	if taken, err := s.userRepository.CheckUsername(ctx, username); err == nil && taken {
		return domain.ErrUsernameAlreadyExists
	}
	return domain.ErrUserAlreadyExists
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, req domain.AvatarRequest) (domain.AvatarResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	data, err := storage.DecodeBase64Image(req.Avatar)
	if err != nil {
		return domain.AvatarResponse{}, domain.NewValidationError("avatar", storage.ErrInvalidImage.Error())
	}

	objectKey, err := s.s3.UploadFile(ctx, uuid.NewString(), data, avatarFolder, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrFileTypeNotAllowed) {
			return domain.AvatarResponse{}, domain.NewValidationError("avatar", storage.ErrInvalidImage.Error())
		}
		return domain.AvatarResponse{}, err
	}

	link := s.s3.GetPublicLinkKey(objectKey)
	if err := s.userRepository.UpdateAvatar(ctx, user.ID, link); err != nil {
		s.deleteObject(ctx, objectKey)
		return domain.AvatarResponse{}, err
	}

	s.deleteObject(ctx, s.s3.GetObjectKeyFromLink(user.Avatar))
	return domain.AvatarResponse{Avatar: link}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return nil
	}

	if err := s.userRepository.UpdateAvatar(ctx, user.ID, ""); err != nil {
		return err
	}
	s.deleteObject(ctx, s.s3.GetObjectKeyFromLink(user.Avatar))
	return nil
}

func (s *userService) findUser(ctx context.Context, id string) (*entities.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) subscribedTo(ctx context.Context, viewerID string, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	viewer, err := uuid.Parse(viewerID)
	if err != nil || len(authorIDs) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	return s.subscriptions.GetSubscribedAuthorIDs(ctx, viewer, authorIDs)
}

func (s *userService) deleteObject(ctx context.Context, objectKey string) {
	if objectKey == "" {
		return
	}
	if err := s.s3.DeleteFile(ctx, objectKey); err != nil {
		s.log.WithError(err).WithField("object_key", objectKey).Warn("failed to delete avatar")
	}
}

func ToUserResponse(user *entities.User, isSubscribed bool) domain.UserResponse {
	res := domain.UserResponse{
		Email:        user.Email,
		ID:           user.ID.String(),
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
	if user.Avatar != "" {
		avatar := user.Avatar
		res.Avatar = &avatar
	}
	return res
}
