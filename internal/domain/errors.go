package domain

import "errors"

// ErrNotFound sinaliza registro ausente na camada de persistência; os serviços
// traduzem para o erro de domínio adequado.
var ErrNotFound = errors.New("registro nao encontrado")
