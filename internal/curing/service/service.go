package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/naleksandarn/fermented-sausages/internal/config"
	"github.com/naleksandarn/fermented-sausages/internal/curing/entity"
	"github.com/naleksandarn/fermented-sausages/internal/curing/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Services bundles the application services.
type Services struct {
	Auth      *AuthService
	User      *UserService
	Product   *ProductService
	Batch     *BatchService
	Trolley   *TrolleyService
	Recorder  *RecorderService
	Analytics *AnalyticsService
	Notifier  *NotifierService
}

func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	recorder := NewRecorderService(db, repos.Measurement)
	return &Services{
		Auth:      NewAuthService(repos.User, rdb, cfg),
		User:      NewUserService(repos.User),
		Product:   NewProductService(repos.Product),
		Batch:     NewBatchService(db, repos.Batch, repos.Product, repos.Trolley),
		Trolley:   NewTrolleyService(db, repos.Trolley),
		Recorder:  recorder,
		Analytics: NewAnalyticsService(repos.Analytics),
		Notifier:  NewNotifierService(repos.Notification, rdb, logger),
	}
}

// newID generates a 32-char identifier, matching the column width used
// across all tables.
func newID() string {
	return uuid.New().String()[:32]
}

// UserService manages the user directory. Listing never exposes
// credentials; Create and Update hash the password before it touches the
// repository.
type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.repo.List(ctx)
}

// CreateUserRequest carries a new directory entry. The password arrives
// in clear and is hashed here.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		ID:           newID(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, wrapRepoErr(err)
	}
	return u, nil
}

// UpdateUserRequest edits a directory entry. A blank password keeps the
// stored hash.
type UpdateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password"`
	Role      string `json:"role" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*entity.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err)
	}
	u.Username = req.Username
	u.Role = req.Role
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	if strings.TrimSpace(req.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, wrapRepoErr(err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return wrapRepoErr(s.repo.Delete(ctx, id))
}
