package contracts

import "github.com/julienschmidt/httprouter"

// Handler is an HTTP surface that mounts its routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
