// Package config provides configuration loading and validation for the
// pricing oracle.
package config

import "errors"

var (
	// ErrNoUnits indicates that no units are configured.
	ErrNoUnits = errors.New("at least one unit must be configured")
	// ErrUnitNameRequired indicates that a unit is missing its name.
	ErrUnitNameRequired = errors.New("unit name must be specified")
	// ErrDuplicateUnitIndex indicates that two units share a unit_index.
	ErrDuplicateUnitIndex = errors.New("duplicate unit_index")
	// ErrUnitMarketRequired indicates that a non-proxy unit is missing chain or contract.
	ErrUnitMarketRequired = errors.New("chain and contract must be specified for non-proxy units")
	// ErrReferenceIDRequired indicates that a price reference is missing its id.
	ErrReferenceIDRequired = errors.New("price reference id must be specified")
	// ErrDuplicateReferenceID indicates that two price references share an id.
	ErrDuplicateReferenceID = errors.New("duplicate price reference id")
	// ErrReferenceMarketRequired indicates that a price reference is missing chain or contract.
	ErrReferenceMarketRequired = errors.New("chain and contract must be specified for price references")
	// ErrProxyTargetRequired indicates that a proxy names neither a unit nor a reference.
	ErrProxyTargetRequired = errors.New("proxy must set exactly one of use_unit or use_reference")
	// ErrProxyTargetAmbiguous indicates that a proxy names both a unit and a reference.
	ErrProxyTargetAmbiguous = errors.New("proxy must not set both use_unit and use_reference")
	// ErrProxyTargetUnknown indicates that a proxy points at a target that is not configured.
	ErrProxyTargetUnknown = errors.New("proxy target not configured")
	// ErrProxySelfReference indicates that a proxy unit points at itself.
	ErrProxySelfReference = errors.New("proxy must not point at its own unit")
	// ErrSourceNameRequired indicates that a source entry is missing its name.
	ErrSourceNameRequired = errors.New("source name must be specified")
	// ErrDuplicateSource indicates that a source is listed twice.
	ErrDuplicateSource = errors.New("duplicate source")
	// ErrDuplicateForexSymbol indicates that a forex symbol is listed twice.
	ErrDuplicateForexSymbol = errors.New("duplicate forex symbol")
	// ErrForexSymbolRequired indicates an empty forex symbol entry.
	ErrForexSymbolRequired = errors.New("forex symbol must not be empty")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
