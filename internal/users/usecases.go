package users

import (
	"context"
	"strings"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

type UpdateProfileRequest struct {
	Name  *string `json:"nombre"`
	Email *string `json:"email"`
	Phone *string `json:"telefono"`
}

// UpdateUserRequest is the admin edit. The role changes through the FK only;
// the display name always comes from the joined roles row.
type UpdateUserRequest struct {
	Name   *string `json:"nombre"`
	Email  *string `json:"email"`
	RoleID *int64  `json:"idRol"`
}

type AddressRequest struct {
	Province   *string `json:"provincia"`
	City       *string `json:"ciudad"`
	Street     *string `json:"calle"`
	Number     *string `json:"numero"`
	PostalCode *string `json:"codigoPostal"`
}

type PaymentMethodRequest struct {
	Method string  `json:"metodo" binding:"required"`
	Holder *string `json:"titular"`
	Last4  *string `json:"ultimos4"`
	Expiry *string `json:"expiracion"`
}

type Service struct {
	db   storage.DB
	repo Repository
}

func NewService(db storage.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUser(ctx, s.db, userID)
}

// UpdateProfile edits the caller's own account. Email changes keep the
// uniqueness invariant.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*User, error) {
	user, err := s.repo.GetUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != "" && email != user.Email {
			taken, err := s.repo.EmailTakenByOther(ctx, s.db, email, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperrors.Invalidf("el email ya está registrado")
			}
			user.Email = email
		}
	}

	if err := s.repo.UpdateUser(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx, s.db)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, s.db, id)
}

// UpdateUser is the admin edit. A role change validates the target role and
// writes the FK; there is no second role field to keep in sync.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	user, err := s.repo.GetUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != "" && email != user.Email {
			taken, err := s.repo.EmailTakenByOther(ctx, s.db, email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperrors.Invalidf("el email ya está registrado")
			}
			user.Email = email
		}
	}
	if req.RoleID != nil {
		role, err := s.repo.GetRole(ctx, s.db, *req.RoleID)
		if err != nil {
			return nil, apperrors.Invalidf("rol inválido")
		}
		user.RoleID = role.ID
		user.Role = role.Name
	}

	if err := s.repo.UpdateUser(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, s.db, id)
}

func (s *Service) ListAddresses(ctx context.Context, userID int64) ([]Address, error) {
	return s.repo.ListAddresses(ctx, s.db, userID)
}

func (s *Service) CreateAddress(ctx context.Context, userID int64, req AddressRequest) (*Address, error) {
	address := &Address{
		UserID:     userID,
		Province:   req.Province,
		City:       req.City,
		Street:     req.Street,
		Number:     req.Number,
		PostalCode: req.PostalCode,
	}
	if err := s.repo.CreateAddress(ctx, s.db, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *Service) UpdateAddress(ctx context.Context, userID, addressID int64, req AddressRequest) (*Address, error) {
	address, err := s.repo.GetOwnedAddress(ctx, s.db, userID, addressID)
	if err != nil {
		return nil, err
	}

	if req.Province != nil {
		address.Province = req.Province
	}
	if req.City != nil {
		address.City = req.City
	}
	if req.Street != nil {
		address.Street = req.Street
	}
	if req.Number != nil {
		address.Number = req.Number
	}
	if req.PostalCode != nil {
		address.PostalCode = req.PostalCode
	}

	if err := s.repo.UpdateAddress(ctx, s.db, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *Service) DeleteAddress(ctx context.Context, userID, addressID int64) error {
	address, err := s.repo.GetOwnedAddress(ctx, s.db, userID, addressID)
	if err != nil {
		return err
	}
	return s.repo.DeleteAddress(ctx, s.db, address.ID)
}

func (s *Service) ListPaymentMethods(ctx context.Context, userID int64) ([]SavedPaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, s.db, userID)
}

func (s *Service) CreatePaymentMethod(ctx context.Context, userID int64, req PaymentMethodRequest) (*SavedPaymentMethod, error) {
	method := &SavedPaymentMethod{
		UserID: userID,
		Method: req.Method,
		Holder: req.Holder,
		Last4:  req.Last4,
		Expiry: req.Expiry,
	}
	if err := s.repo.CreatePaymentMethod(ctx, s.db, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, userID, methodID int64, req PaymentMethodRequest) (*SavedPaymentMethod, error) {
	method, err := s.repo.GetOwnedPaymentMethod(ctx, s.db, userID, methodID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Method) != "" {
		method.Method = req.Method
	}
	if req.Holder != nil {
		method.Holder = req.Holder
	}
	if req.Last4 != nil {
		method.Last4 = req.Last4
	}
	if req.Expiry != nil {
		method.Expiry = req.Expiry
	}

	if err := s.repo.UpdatePaymentMethod(ctx, s.db, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *Service) DeletePaymentMethod(ctx context.Context, userID, methodID int64) error {
	method, err := s.repo.GetOwnedPaymentMethod(ctx, s.db, userID, methodID)
	if err != nil {
		return err
	}
	return s.repo.DeletePaymentMethod(ctx, s.db, method.ID)
}

func (s *Service) ListPaymentTypes(ctx context.Context) ([]PaymentType, error) {
	return s.repo.ListPaymentTypes(ctx, s.db)
}
