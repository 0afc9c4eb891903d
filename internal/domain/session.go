package domain

import "time"

// Session — результат успешного логина в masking engine.
//
// Токен непрозрачный и живёт столько же, сколько процесс: обновления нет.
// Если engine перестал принимать токен, вызывающий код получает ошибку
// авторизации и должен залогиниться заново явно.
type Session struct {
	// Token — значение заголовка Authorization (без схемы).
	Token string `json:"-"`

	// Username — пользователь, под которым получен токен.
	Username string `json:"username"`

	// IssuedAt — время логина.
	IssuedAt time.Time `json:"issued_at"`
}

// Valid возвращает true, если у сессии есть токен.
func (s Session) Valid() bool {
	return s.Token != ""
}
