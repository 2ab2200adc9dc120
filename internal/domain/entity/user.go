package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin     = "admin"
	RoleOperator  = "operador"
	RoleViewer    = "consulta"
)

// User representa un usuario de la aplicación.
type User struct {
	ID           string
	Name         string
	Email        string // único
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
