package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/pkg/jwt"
)

// memUserRepo repositorio de usuarios en memoria indexado por email.
type memUserRepo struct {
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*entity.User{}, byEmail: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrDuplicate
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByEmail(email string) (*entity.User, error) {
	if u, ok := r.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) Update(*entity.User) error             { return nil }
func (r *memUserRepo) List(int, int) ([]*entity.User, error) { return nil, nil }

func newAuthUC() (*auth.AuthUseCase, *memUserRepo) {
	users := newMemUserRepo()
	return auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret:     "secreto-de-test",
		ExpMinutes: 60,
		Issuer:     "almacen-api-test",
	}), users
}

func TestRegister_CreaUsuarioConHash(t *testing.T) {
	uc, users := newAuthUC()

	resp, err := uc.Register(dto.RegisterRequest{
		Name: "Ana", Email: "ana@acme.com", Password: "supersecreta",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@acme.com", resp.Email)
	// Sin rol explícito se asigna operador
	assert.Equal(t, entity.RoleOperator, resp.Role)

	stored := users.byEmail["ana@acme.com"]
	require.NotNil(t, stored)
	// Nunca se guarda el password en claro
	assert.NotEqual(t, "supersecreta", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, _ := newAuthUC()

	_, err := uc.Register(dto.RegisterRequest{Name: "Ana", Email: "ana@acme.com", Password: "supersecreta"})
	require.NoError(t, err)

	_, err = uc.Register(dto.RegisterRequest{Name: "Otra Ana", Email: "ana@acme.com", Password: "otracosa123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_TokenValido(t *testing.T) {
	uc, _ := newAuthUC()

	_, err := uc.Register(dto.RegisterRequest{
		Name: "Ana", Email: "ana@acme.com", Password: "supersecreta", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)

	resp, err := uc.Login(dto.LoginRequest{Email: "ana@acme.com", Password: "supersecreta"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role)

	// El token lleva los claims del usuario
	userID, role, err := jwt.Parse("secreto-de-test", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newAuthUC()

	_, err := uc.Register(dto.RegisterRequest{Name: "Ana", Email: "ana@acme.com", Password: "supersecreta"})
	require.NoError(t, err)

	// Password incorrecto y email inexistente devuelven el mismo error:
	// el login no revela qué cuentas existen.
	_, err = uc.Login(dto.LoginRequest{Email: "ana@acme.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@acme.com", Password: "supersecreta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetProfile(t *testing.T) {
	uc, _ := newAuthUC()

	created, err := uc.Register(dto.RegisterRequest{Name: "Ana", Email: "ana@acme.com", Password: "supersecreta"})
	require.NoError(t, err)

	profile, err := uc.GetProfile(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, profile.Email)

	_, err = uc.GetProfile("id-inexistente")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
