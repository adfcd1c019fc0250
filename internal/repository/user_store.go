package repository

import (
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

func cloneUser(u models.User) models.User { return u.Clone() }

// GetUser returns the user with the given id.
func (s *Storage) GetUser(id int) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users.get(id)
	if !ok {
		return models.User{}, false
	}
	return u.Clone(), true
}

// GetUserByUsername scans for the user with the given username.
func (s *Storage) GetUserByUsername(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.userByUsernameLocked(username)
	if !ok {
		return models.User{}, false
	}
	return u.Clone(), true
}

func (s *Storage) userByUsernameLocked(username string) (models.User, bool) {
	return s.users.find(func(u models.User) bool { return u.Username == username })
}

// ListUsers returns a snapshot of every user ordered by id.
func (s *Storage) ListUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.filter(nil, cloneUser)
}

// CreateUser stores a new user. A taken username yields a conflict even when
// the caller already checked, since two registrations can race.
func (s *Storage) CreateUser(input models.UserInput) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.userByUsernameLocked(input.Username); taken {
		return models.User{}, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	role := input.Role
	if role == "" {
		role = models.RoleSender
	}
	user := models.User{
		ID:        s.users.nextID(),
		Username:  input.Username,
		Password:  input.Password,
		Email:     input.Email,
		FullName:  input.FullName,
		Role:      role,
		Phone:     input.Phone,
		CreatedAt: s.now(),
	}
	user = user.Clone()
	s.users.put(user.ID, user)
	return user.Clone(), nil
}

// UpdateUser merges the patch into the user.
func (s *Storage) UpdateUser(id int, patch models.UserPatch) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users.get(id)
	if !ok {
		return models.User{}, false
	}
	if patch.Password != nil {
		user.Password = *patch.Password
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
	user = user.Clone()
	s.users.put(id, user)
	return user.Clone(), true
}
