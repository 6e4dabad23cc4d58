// Пакет model — доменные модели Book Market.
// Principal — кошелёк-идентичность участника (автор, продавец, покупатель).
package model

import (
	"regexp"
	"time"
)

// Role — роль участника в маркетплейсе.
type Role string

const (
	// RoleUser — покупатель (роль по умолчанию)
	RoleUser Role = "USER"
	// RoleAuthor — автор, может публиковать книги
	RoleAuthor Role = "AUTHOR"
	// RoleSeller — продавец, может публиковать и перепродавать книги
	RoleSeller Role = "SELLER"
)

// validRoles — закрытый набор допустимых ролей.
var validRoles = map[Role]bool{
	RoleUser:   true,
	RoleAuthor: true,
	RoleSeller: true,
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role Role) bool {
	return validRoles[role]
}

// addressPattern — формат адреса кошелька: 0x + 40 hex-символов.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidAddress проверяет формат адреса кошелька.
func IsValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}

// Principal — верифицированная идентичность участника.
// Адрес кошелька уникален и неизменяем после регистрации.
type Principal struct {
	// Address — адрес кошелька (0x + 40 hex)
	Address string `json:"address"`

	// Role — роль участника (USER, AUTHOR, SELLER)
	Role Role `json:"role"`

	// CreatedAt — дата и время первой аутентификации (UTC)
	CreatedAt time.Time `json:"created_at"`
}
