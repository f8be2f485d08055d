package persistence

import "github.com/sevenext/backend/internal/domain/shared"

// errConcurrentUpdate is returned when an optimistic version check matches no row
var errConcurrentUpdate = shared.NewConflictError("CONCURRENT_MODIFICATION", "The record was modified by another request, please retry")
