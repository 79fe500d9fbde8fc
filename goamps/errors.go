package goamps

import "errors"

// Errors
var (
	ErrBadLegCount      = errors.New("bad leg count")
	ErrBadDegree        = errors.New("bad target degree")
	ErrBadEECount       = errors.New("bad EE contraction count")
	ErrBadFactor        = errors.New("bad scalar factor")
	ErrBadStructureExpr = errors.New("bad structure expression")
	ErrBadEncoding      = errors.New("bad structure encoding")
	ErrBadCatalogParam  = errors.New("bad catalog param")
)
