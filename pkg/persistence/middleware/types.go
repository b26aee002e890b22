package middleware

import "github.com/aretw0/docflows/pkg/ports"

// Middleware allows wrapping a SpecStore to add behavior.
type Middleware func(ports.SpecStore) ports.SpecStore
