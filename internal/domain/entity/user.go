package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleSoporte = "soporte"
	RoleCliente = "cliente"
)

// User representa un usuario del storefront (cliente o personal de la tienda).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, soporte, cliente
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
