package service

import (
	"errors"
	"strings"

	"github.com/roy-rc/sfstore/config"
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/internal/app/repository"
	"github.com/roy-rc/sfstore/pkg/logger"
	"github.com/roy-rc/sfstore/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCustomerNotFound   = errors.New("customer not found")
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type AuthService interface {
	Register(req RegisterRequest) (*model.Customer, *util.TokenPair, error)
	Login(email, password string) (*model.Customer, *util.TokenPair, error)
	GetCustomerByID(id uint) (*model.Customer, error)
	UpdateProfile(customerID uint, req UpdateProfileRequest) (*model.Customer, error)
}

type authService struct {
	customerRepo repository.CustomerRepository
	jwtConfig    *config.JWTConfig
}

func NewAuthService(customerRepo repository.CustomerRepository, jwtConfig *config.JWTConfig) AuthService {
	return &authService{
		customerRepo: customerRepo,
		jwtConfig:    jwtConfig,
	}
}

func (s *authService) Register(req RegisterRequest) (*model.Customer, *util.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	logger.Info("Registering new customer", map[string]interface{}{
		"email": email,
	})

	if _, err := s.customerRepo.FindByEmail(email); err == nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, nil, err
	}

	customer := &model.Customer{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         model.RoleCustomer,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(customer)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Customer registered successfully", map[string]interface{}{
		"customer_id": customer.ID,
		"email":       customer.Email,
	})
	return customer, tokens, nil
}

func (s *authService) Login(email, password string) (*model.Customer, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("Customer login attempt", map[string]interface{}{
		"email": email,
	})

	customer, err := s.customerRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: customer not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(customer.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"customer_id": customer.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(customer)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Customer logged in successfully", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return customer, tokens, nil
}

func (s *authService) GetCustomerByID(id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *authService) UpdateProfile(customerID uint, req UpdateProfileRequest) (*model.Customer, error) {
	logger.Info("Updating customer profile", map[string]interface{}{
		"customer_id": customerID,
	})

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	if req.FirstName != "" {
		customer.FirstName = req.FirstName
	}
	if req.LastName != "" {
		customer.LastName = req.LastName
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.Address != "" {
		customer.Address = req.Address
	}

	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *authService) issueTokens(customer *model.Customer) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		customer.ID,
		customer.Email,
		string(customer.Role),
		s.jwtConfig.Secret,
		s.jwtConfig.AccessTokenExpiry,
		s.jwtConfig.RefreshTokenExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return nil, err
	}
	return tokens, nil
}
