package http

import (
	"github.com/nats-io/nats.go"

	"github.com/mikelzubi/mimapa/internal/adapters/postgres"
	"github.com/mikelzubi/mimapa/internal/core/ports"
	"github.com/mikelzubi/mimapa/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Markers *usecases.MarkerService
	Visits  *usecases.VisitService
	Media   ports.MediaStore
	NATS    *nats.Conn
	DB      *postgres.DB
}
