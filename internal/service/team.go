package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
)

// defaultAvatarURL is a neutral silhouette used until a member uploads a picture
const defaultAvatarURL = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHZpZXdCb3g9IjAgMCAyNCAyNCIgZmlsbD0iI2E5YTlhOSI+PHBhdGggZmlsbC1ydWxlPSJldmVub2RkIiBkPSJNMTguNjg1IDE5LjA5N0E5LjcyMyA5LjcyMyAwIDAwMjEuNzUgMTJjMC01LjM4NS00LjM2NS05Ljc1LTkuNzUtOS43NVMxLjI1IDYuNjE1IDEuMjUgMTJhOS43MjMgOS43MjMgMCAwMDMuMDY1IDcuMDk3QTkuNzE2IDkuNzE2IDAgMDAxMiAyMS43NWE5LjcxNiA5LjcxNiAwIDAwNi42ODUtMi42NTN6bS0xMi41NC0xLjI4NUE3LjQ4NiA3LjQ4NiAwIDAxMTIgMTVhNy40ODYgNy40ODYgMCAwMTUuODU1IDIuODEyQTguMjI0IDguMjI0IDAgMDExMiAyMC4yNWE4LjIyNCA4LjIyNCAwIDAxLTUuODU1LTIuNDM4ek0xNS43NSA5YTMuNzUgMy43NSAwIDExLTcuNSAwIDMuNzUgMy43NSAwIDAxNy41IDB6IiBjbGlwLXJ1bGU9ImV2ZW5vZGQiIC8+PC9zdmc+"

// Company methods
func (s *DefaultService) CreateCompany(ctx context.Context, req models.CreateCompanyRequest) (*models.Company, error) {
	company := &models.Company{Name: req.Name}

	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("error creating company: %w", err)
	}

	return company, nil
}

func (s *DefaultService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing companies: %w", err)
	}
	return companies, nil
}

// Team member methods
func (s *DefaultService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if req.CompanyID != "" {
		if err := s.requireCompany(ctx, req.CompanyID); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		Name:       req.Name,
		Role:       req.Role,
		HourlyRate: *req.HourlyRate,
		AvatarURL:  defaultAvatarURL,
		CompanyID:  optional(req.CompanyID),
	}

	if req.Pin != "" {
		hash, err := hashPin(req.Pin)
		if err != nil {
			return nil, err
		}
		user.PinHash = hash
	}

	// New members always start clocked out
	user.SetClockState(models.ClockState{})

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *DefaultService) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *DefaultService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	return user, nil
}

// UpdateUser changes profile fields only. A new hourly rate applies to
// clock-outs from now on; recorded costs keep the rate they were billed at.
func (s *DefaultService) UpdateUser(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.HourlyRate != nil {
		user.HourlyRate = *req.HourlyRate
	}
	if req.Pin != nil {
		hash, err := hashPin(*req.Pin)
		if err != nil {
			return nil, err
		}
		user.PinHash = hash
	}

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return user, nil
}

func (s *DefaultService) requireCompany(ctx context.Context, companyID string) error {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("error getting company: %w", err)
	}
	if company == nil {
		return fmt.Errorf("company %s: %w", companyID, ErrNotFound)
	}
	return nil
}
