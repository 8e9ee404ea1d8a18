package main

import "errors"

// Protocol errors. They are reported to the offending connection as an
// error notification and never terminate it; the message text is the
// user-facing wire contract, so it stays in Spanish.
var (
	ErrInvalidConnection = errors.New("Conexión no registrada.")
	ErrAlreadyInRoom     = errors.New("Ya estás en una sala.")
	ErrNoSuchRoom        = errors.New("La sala no existe.")
	ErrRoomFull          = errors.New("La sala está llena.")
	ErrWeakPassword      = errors.New("La contraseña debe tener al menos 3 caracteres.")
	ErrBadCode           = errors.New("Código incorrecto.")
	ErrBadPassword       = errors.New("Contraseña incorrecta.")
	ErrUnknownKind       = errors.New("Tipo de mensaje no reconocido.")
)
