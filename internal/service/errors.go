package service

import "errors"

// ErrForbidden возвращается при попытке доступа к чужому ресурсу
// (handler маппит в 403)
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials возвращается при неверной паре email/пароль
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated возвращается при невалидном/истёкшем bearer токене
var ErrUnauthenticated = errors.New("unauthenticated")
