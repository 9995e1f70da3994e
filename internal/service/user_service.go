package service

import (
	"context"
	"strings"

	"github.com/spw3bt3ch/Teachers-blog/internal/activity"
	"github.com/spw3bt3ch/Teachers-blog/internal/models"
	"github.com/spw3bt3ch/Teachers-blog/internal/policy"
	"github.com/spw3bt3ch/Teachers-blog/internal/repository"
	"github.com/spw3bt3ch/Teachers-blog/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configured cost is zero.
const DefaultBcryptCost = 12

type UserService struct {
	userRepo   repository.UserRepository
	activity   activity.Recorder
	bcryptCost int
}

type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Username   string
	School     string
	Subject    string
	Experience *int
}

// UpdateProfileInput is a partial patch; nil fields are left unchanged.
type UpdateProfileInput struct {
	Actor      *policy.Actor
	UserID     uint
	Name       *string
	Bio        *string
	School     *string
	Subject    *string
	Experience *int
	Image      *string
}

func NewUserService(userRepo repository.UserRepository, recorder activity.Recorder, bcryptCost int) *UserService {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &UserService{userRepo: userRepo, activity: recorder, bcryptCost: bcryptCost}
}

// Register creates a teacher account. Email and username are unique ignoring case.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := models.NormalizeIdentity(in.Email)
	username := models.NormalizeIdentity(in.Username)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" || username == "" {
		return nil, models.NewValidationError("Email, password, name, and username are required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	experience := 0
	if in.Experience != nil {
		experience = *in.Experience
	}
	if err := validation.ValidateProfile("", experience); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:      email,
		Username:   username,
		Name:       name,
		Password:   string(hashed),
		Role:       models.RoleTeacher,
		School:     strings.TrimSpace(in.School),
		Subject:    strings.TrimSpace(in.Subject),
		Experience: experience,
	}
	// a concurrent registration can still lose the race; Create maps that to Conflict
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.activity.Log(ctx, user.ID, models.ActivityUserRegistered, activity.Options{
		Details:  "User registered: " + user.Name + " (" + user.Email + ")",
		Metadata: map[string]any{"username": user.Username},
	})
	return user, nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewUnauthorizedError("Invalid email or password")
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}

	s.activity.Log(ctx, user.ID, models.ActivityUserLogin, activity.Options{
		Details: "User logged in: " + user.Username,
	})
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetPublicProfile looks a user up by username and strips the email.
func (s *UserService) GetPublicProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("User not found")
	}
	user.Email = ""
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := policy.Authorize(in.Actor, policy.User(in.UserID), policy.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		fields["name"] = name
	}
	bio := ""
	if in.Bio != nil {
		bio = strings.TrimSpace(*in.Bio)
		fields["bio"] = bio
	}
	experience := 0
	if in.Experience != nil {
		experience = *in.Experience
		fields["experience"] = experience
	}
	if err := validation.ValidateProfile(bio, experience); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.School != nil {
		fields["school"] = strings.TrimSpace(*in.School)
	}
	if in.Subject != nil {
		fields["subject"] = strings.TrimSpace(*in.Subject)
	}
	if in.Image != nil {
		fields["image"] = strings.TrimSpace(*in.Image)
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateProfile(ctx, in.UserID, fields); err != nil {
			return nil, err
		}
		changed := make([]string, 0, len(fields))
		for k := range fields {
			changed = append(changed, k)
		}
		s.activity.Log(ctx, in.Actor.ID, models.ActivityUserUpdated, activity.Options{
			Details:  "Updated profile",
			Metadata: map[string]any{"fields": changed, "user_id": in.UserID},
		})
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}
