package services

import (
	"context"
	"time"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// IdentityService handles signup, login and account administration for all
// four roles.
type IdentityService struct {
	users      repositories.UserRepository
	donors     repositories.DonorRepository
	boys       repositories.DeliveryBoyRepository
	moderators repositories.ModeratorRepository
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	users repositories.UserRepository,
	donors repositories.DonorRepository,
	boys repositories.DeliveryBoyRepository,
	moderators repositories.ModeratorRepository,
) *IdentityService {
	return &IdentityService{
		users:      users,
		donors:     donors,
		boys:       boys,
		moderators: moderators,
	}
}

// SignupUser registers a new coordinating user
func (s *IdentityService) SignupUser(ctx context.Context, username, email, password, address string, location models.GeoPoint) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Location:     location,
		DeliveryBoys: []primitive.ObjectID{},
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	log.Info().Str("username", username).Msg("User registered")
	return user, nil
}

// SignupDonor registers a new donor
func (s *IdentityService) SignupDonor(ctx context.Context, username, email, password, address string) (*models.Donor, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	donor := &models.Donor{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		CreatedAt:    time.Now(),
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	log.Info().Str("username", username).Msg("Donor registered")
	return donor, nil
}

// RegisterDeliveryBoy creates a delivery boy and links it to the registering
// user. The user's list and its derived count are updated together.
func (s *IdentityService) RegisterDeliveryBoy(ctx context.Context, userUsername, name, mobile, password, vehicleNo, drivingLicense string, location models.GeoPoint) (*models.DeliveryBoy, error) {
	if _, err := s.users.GetByUsername(ctx, userUsername); err != nil {
		return nil, errors.Wrap(err, "user lookup failed")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	boy := &models.DeliveryBoy{
		Name:            name,
		Mobile:          mobile,
		PasswordHash:    hash,
		VehicleNo:       vehicleNo,
		DrivingLicense:  drivingLicense,
		CurrentLocation: location,
		Status:          models.DeliveryBoyAvailable,
		CreatedAt:       time.Now(),
	}
	if err := s.boys.Create(ctx, boy); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	if err := s.users.RegisterDeliveryBoy(ctx, userUsername, boy.ID); err != nil {
		return nil, errors.Wrap(err, "failed to link delivery boy to user")
	}

	log.Info().Str("name", name).Str("user", userUsername).Msg("Delivery boy registered")
	return boy, nil
}

// LoginUser verifies user credentials
func (s *IdentityService) LoginUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// LoginDonor verifies donor credentials
func (s *IdentityService) LoginDonor(ctx context.Context, username, password string) (*models.Donor, error) {
	donor, err := s.donors.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(donor.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if donor.IsBanned {
		return nil, ErrDonorBanned
	}
	return donor, nil
}

// LoginDeliveryBoy verifies delivery boy credentials by name
func (s *IdentityService) LoginDeliveryBoy(ctx context.Context, name, password string) (*models.DeliveryBoy, error) {
	boy, err := s.boys.GetByName(ctx, name)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(boy.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return boy, nil
}

// LoginModerator verifies moderator credentials
func (s *IdentityService) LoginModerator(ctx context.Context, username, password string) (*models.Moderator, error) {
	mod, err := s.moderators.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !checkPassword(mod.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return mod, nil
}

// GetDeliveryBoyByName resolves a delivery boy from the name carried in its
// token claims.
func (s *IdentityService) GetDeliveryBoyByName(ctx context.Context, name string) (*models.DeliveryBoy, error) {
	return s.boys.GetByName(ctx, name)
}

// ToggleDeliveryBoyStatus flips a delivery boy between available and
// inactive. A boy on an ongoing delivery cannot toggle.
func (s *IdentityService) ToggleDeliveryBoyStatus(ctx context.Context, boyID primitive.ObjectID) (*models.DeliveryBoy, error) {
	boy, err := s.boys.GetByID(ctx, boyID)
	if err != nil {
		return nil, errors.Wrap(err, "delivery boy lookup failed")
	}
	if boy.Status == models.DeliveryBoyOnGoing {
		return nil, &DeliveryBoyBusyError{Name: boy.Name}
	}

	target := models.DeliveryBoyAvailable
	if boy.Status == models.DeliveryBoyAvailable {
		target = models.DeliveryBoyInactive
	}

	toggled, err := s.boys.ToggleStatus(ctx, boyID, target)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Became on-going between the read and the toggle.
			return nil, &DeliveryBoyBusyError{Name: boy.Name}
		}
		return nil, err
	}
	return toggled, nil
}

// UpdateDeliveryBoyLocation stores the boy's current position
func (s *IdentityService) UpdateDeliveryBoyLocation(ctx context.Context, boyID primitive.ObjectID, location models.GeoPoint) error {
	return s.boys.UpdateLocation(ctx, boyID, location)
}

// SetDonorBanned bans or unbans a donor. Existing posts are untouched.
func (s *IdentityService) SetDonorBanned(ctx context.Context, donorUsername string, banned bool) error {
	if err := s.donors.SetBanned(ctx, donorUsername, banned); err != nil {
		return err
	}
	log.Info().Str("donor", donorUsername).Bool("banned", banned).Msg("Donor ban flag updated")
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
