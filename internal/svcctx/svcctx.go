// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/config"
	"github.com/jackzampolin/lectern/internal/corrections"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/jobs"
	"github.com/jackzampolin/lectern/internal/providers"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	DB          *sql.DB
	Books       *books.Store
	Editor      *books.Editor
	Ledger      *corrections.Store
	Corrections *corrections.Query
	Finder      *corrections.SuggestionFinder
	JobManager  *jobs.Manager
	Registry    *providers.Registry
	ConfigMgr   *config.Manager
	Logger      *slog.Logger
	Home        *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// DBFrom extracts the database handle from context.
func DBFrom(ctx context.Context) *sql.DB {
	if s := ServicesFrom(ctx); s != nil {
		return s.DB
	}
	return nil
}

// BooksFrom extracts the book store from context.
func BooksFrom(ctx context.Context) *books.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Books
	}
	return nil
}

// EditorFrom extracts the paragraph editor from context.
func EditorFrom(ctx context.Context) *books.Editor {
	if s := ServicesFrom(ctx); s != nil {
		return s.Editor
	}
	return nil
}

// LedgerFrom extracts the correction ledger from context.
func LedgerFrom(ctx context.Context) *corrections.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Ledger
	}
	return nil
}

// CorrectionsFrom extracts the correction query helper from context.
func CorrectionsFrom(ctx context.Context) *corrections.Query {
	if s := ServicesFrom(ctx); s != nil {
		return s.Corrections
	}
	return nil
}

// FinderFrom extracts the bulk suggestion finder from context.
func FinderFrom(ctx context.Context) *corrections.SuggestionFinder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Finder
	}
	return nil
}

// JobManagerFrom extracts the job manager from context.
func JobManagerFrom(ctx context.Context) *jobs.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.JobManager
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// ConfigMgrFrom extracts the config manager from context.
func ConfigMgrFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigMgr
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
