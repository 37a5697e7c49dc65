// Package domain contains the core domain model for CMAT.
//
// The domain is transport- and persistence-agnostic: it does not depend on
// FITS/CSV parsing, net/http, or the filesystem. Infra/adapters map into/from
// these types.
package domain
