package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"okrproject/errs"
	"okrproject/models"
	repository "okrproject/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memObjectiveRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Objective
	// fail the named cascade step
	failStep string
}

func newMemObjectiveRepo() *memObjectiveRepo {
	return &memObjectiveRepo{byID: map[primitive.ObjectID]models.Objective{}}
}

func cloneObjective(o models.Objective) models.Objective {
	o.Owners = append([]primitive.ObjectID(nil), o.Owners...)
	o.KeyResults = append([]models.KeyResult(nil), o.KeyResults...)
	return o
}

func (m *memObjectiveRepo) Create(_ context.Context, o *models.Objective) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.TitleKey == o.TitleKey {
			return fmt.Errorf("duplicate title: %w", errs.ErrConflict)
		}
	}
	o.ID = primitive.NewObjectID()
	for i := range o.KeyResults {
		if o.KeyResults[i].ID.IsZero() {
			o.KeyResults[i].ID = primitive.NewObjectID()
		}
	}
	m.byID[o.ID] = cloneObjective(*o)
	return nil
}

func (m *memObjectiveRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Objective, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("objective %s: %w", id.Hex(), errs.ErrNotFound)
	}
	c := cloneObjective(o)
	return &c, nil
}

func (m *memObjectiveRepo) GetAll(_ context.Context) ([]models.Objective, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Objective{}
	for _, o := range m.byID {
		out = append(out, cloneObjective(o))
	}
	return out, nil
}

func (m *memObjectiveRepo) Update(_ context.Context, id primitive.ObjectID, o *models.Objective) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("objective %s: %w", id.Hex(), errs.ErrNotFound)
	}
	for i := range o.KeyResults {
		if o.KeyResults[i].ID.IsZero() {
			o.KeyResults[i].ID = primitive.NewObjectID()
		}
	}
	o.ID = id
	m.byID[id] = cloneObjective(*o)
	return nil
}

func (m *memObjectiveRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("objective %s: %w", id.Hex(), errs.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *memObjectiveRepo) TitleExists(_ context.Context, titleKey string, exclude primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, o := range m.byID {
		if id != exclude && o.TitleKey == titleKey {
			return true, nil
		}
	}
	return false, nil
}

func (m *memObjectiveRepo) DeleteIndividualByCreator(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStep == "individual" {
		return 0, errors.New("connection reset")
	}
	var n int64
	for id, o := range m.byID {
		if o.Category == models.CategoryIndividual && o.CreatedBy == userID {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

func (m *memObjectiveRepo) RemoveTeamOwner(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStep == "team" {
		return 0, errors.New("connection reset")
	}
	var n int64
	for id, o := range m.byID {
		if o.Category != models.CategoryTeam || !o.HasOwner(userID) {
			continue
		}
		kept := []primitive.ObjectID{}
		for _, owner := range o.Owners {
			if owner != userID {
				kept = append(kept, owner)
			}
		}
		o.Owners = kept
		m.byID[id] = o
		n++
	}
	return n, nil
}

type memUserRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[primitive.ObjectID]models.User{}}
}

// add stores a user directly, bypassing the service.
func (m *memUserRepo) add(name, role, department string) models.User {
	u := models.User{
		Email:       name + "@example.com",
		Name:        name,
		Role:        role,
		Department:  department,
		Designation: "Engineer",
		IsActive:    true,
	}
	if err := m.Create(context.Background(), &u); err != nil {
		panic(err)
	}
	return u
}

func (m *memUserRepo) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = repository.NormalizeEmail(u.Email)
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return fmt.Errorf("duplicate email: %w", errs.ErrConflict)
		}
	}
	u.ID = primitive.NewObjectID()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), errs.ErrNotFound)
	}
	return &u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user by email: %w", errs.ErrNotFound)
}

func (m *memUserRepo) GetAll(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID.Hex(), errs.ErrNotFound)
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUserRepo) modify(id primitive.ObjectID, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), errs.ErrNotFound)
	}
	fn(&u)
	m.byID[id] = u
	return nil
}

func (m *memUserRepo) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	return m.modify(id, func(u *models.User) { u.Role = role })
}

func (m *memUserRepo) SetAvatar(_ context.Context, id primitive.ObjectID, fileID primitive.ObjectID) error {
	return m.modify(id, func(u *models.User) { u.AvatarID = &fileID })
}

func (m *memUserRepo) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return m.modify(id, func(u *models.User) { u.LastLoginAt = at })
}

func (m *memUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("user %s: %w", id.Hex(), errs.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *memUserRepo) CountExisting(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			n++
		}
	}
	return n, nil
}

type memAvatarStore struct {
	mu    sync.Mutex
	files map[primitive.ObjectID][]byte
	types map[primitive.ObjectID]string
}

func newMemAvatarStore() *memAvatarStore {
	return &memAvatarStore{
		files: map[primitive.ObjectID][]byte{},
		types: map[primitive.ObjectID]string{},
	}
}

func (m *memAvatarStore) Upload(_ context.Context, _ string, data io.Reader, contentType string, _ primitive.ObjectID) (primitive.ObjectID, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return primitive.NilObjectID, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	m.files[id] = b
	m.types[id] = contentType
	return id, nil
}

func (m *memAvatarStore) Open(_ context.Context, fileID primitive.ObjectID) (*repository.Avatar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[fileID]
	if !ok {
		return nil, fmt.Errorf("avatar %s: %w", fileID.Hex(), errs.ErrNotFound)
	}
	return &repository.Avatar{
		ReadCloser:  io.NopCloser(bytes.NewReader(b)),
		Filename:    "avatar",
		ContentType: m.types[fileID],
		Length:      int64(len(b)),
	}, nil
}

func (m *memAvatarStore) Delete(_ context.Context, fileID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[fileID]; !ok {
		return fmt.Errorf("avatar %s: %w", fileID.Hex(), errs.ErrNotFound)
	}
	delete(m.files, fileID)
	delete(m.types, fileID)
	return nil
}

func (m *memAvatarStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
