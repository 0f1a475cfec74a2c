package repository

import (
	"github.com/roy-rc/sfstore/internal/app/model"
	"github.com/roy-rc/sfstore/pkg/logger"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindByEmail(email string) (*model.Customer, error)
	FindByID(id uint) (*model.Customer, error)
	Update(customer *model.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *model.Customer) error {
	logger.Debug("Creating customer in database", map[string]interface{}{
		"email": customer.Email,
	})

	if err := r.db.Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"email": customer.Email,
		})
		return err
	}

	logger.Debug("Customer created in database", map[string]interface{}{
		"customer_id": customer.ID,
		"email":       customer.Email,
	})
	return nil
}

func (r *customerRepository) FindByEmail(email string) (*model.Customer, error) {
	logger.Debug("Finding customer by email", map[string]interface{}{
		"email": email,
	})

	var customer model.Customer
	if err := r.db.Where("email = ?", email).First(&customer).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find customer by email", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByID(id uint) (*model.Customer, error) {
	logger.Debug("Finding customer by ID", map[string]interface{}{
		"customer_id": id,
	})

	var customer model.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find customer by ID", err, map[string]interface{}{
				"customer_id": id,
			})
		}
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Update(customer *model.Customer) error {
	logger.Debug("Updating customer in database", map[string]interface{}{
		"customer_id": customer.ID,
	})

	if err := r.db.Save(customer).Error; err != nil {
		logger.Error("Failed to update customer in database", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return err
	}
	return nil
}
