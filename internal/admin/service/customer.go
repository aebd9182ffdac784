package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/slogx"
)

var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInvalidCustomerType = errors.New("invalid customer type")
)

const customerNumberPrefix = "C-"

type CustomerInput struct {
	Name  string `validate:"required,min=1,max=255"`
	Email string `validate:"required,email,max=255"`
	Type  string `validate:"required,oneof=individual business"`
}

type CustomerService struct {
	Store store.Store
}

func (s *CustomerService) Get(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.Store.Customers().GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Customer{}, ErrCustomerNotFound
		}
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *CustomerService) ListByAccount(ctx context.Context, accountID string) ([]domain.Customer, error) {
	return s.Store.Customers().ListCustomersByAccount(ctx, accountID)
}

// Create assigns the next sequential customer number for the owning account
// inside a transaction, same as coach numbering.
func (s *CustomerService) Create(ctx context.Context, accountID string, in CustomerInput) (domain.Customer, error) {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return domain.Customer{}, err
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        idx.New().String(),
		AccountID: accountID,
		Name:      in.Name,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Type:      domain.CustomerType(in.Type),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		number, err := nextNumber(ctx, customerNumberPrefix, func() (string, error) {
			return tx.Customers().LatestCustomerNumber(ctx, accountID)
		})
		if err != nil {
			return err
		}
		customer.CustomerNumber = number
		return tx.Customers().CreateCustomer(ctx, customer)
	})
	if err != nil {
		log.Error("failed to create customer", slog.Any("error", err))
		return domain.Customer{}, err
	}

	log.Info("customer created",
		slog.String("customer_id", customer.ID),
		slog.String("customer_number", customer.CustomerNumber),
		slog.String("account_id", accountID),
	)
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, in CustomerInput) (domain.Customer, error) {
	log := slogx.FromContext(ctx)

	if err := validate.Struct(in); err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	customer.Name = in.Name
	customer.Email = strings.ToLower(strings.TrimSpace(in.Email))
	customer.Type = domain.CustomerType(in.Type)

	if err := s.Store.Customers().UpdateCustomer(ctx, customer); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Customer{}, ErrCustomerNotFound
		}
		log.Error("failed to update customer", slog.Any("error", err))
		return domain.Customer{}, err
	}
	return s.Get(ctx, id)
}

func (s *CustomerService) SetAvatar(ctx context.Context, id, path string) (domain.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.Avatar = &path
	if err := s.Store.Customers().UpdateCustomer(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	return s.Get(ctx, id)
}

// ClearAvatar drops the stored avatar path. The caller removes the file.
func (s *CustomerService) ClearAvatar(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.Avatar = nil
	if err := s.Store.Customers().UpdateCustomer(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	return s.Get(ctx, id)
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Customers().DeleteCustomer(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCustomerNotFound
		}
		log.Error("failed to delete customer", slog.Any("error", err))
		return err
	}

	log.Info("customer deleted", slog.String("customer_id", id))
	return nil
}
