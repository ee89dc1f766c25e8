// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/domain/client"
	"github.com/praxis-legal/praxis/internal/domain/contract"
	"github.com/praxis-legal/praxis/internal/domain/dispute"
	"github.com/praxis-legal/praxis/internal/domain/document"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/domain/tenant"
	"github.com/praxis-legal/praxis/internal/domain/user"
)

// Store is the port interface for database operations. Every query is
// scoped to the tenant carried in the context; implementations must not
// return rows from other tenants.
type Store interface {
	// Tenants
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error)

	// Users
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateUser(ctx context.Context, u user.User) (*user.User, error)
	UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)

	// Refresh tokens
	CreateRefreshToken(ctx context.Context, t user.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*user.RefreshToken, error)
	// RotateRefreshToken atomically deletes the old token and inserts the
	// replacement in a single transaction.
	RotateRefreshToken(ctx context.Context, oldHash string, replacement user.RefreshToken) error
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error

	// Token revocation
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpiredRevocations(ctx context.Context) (int64, error)

	// API keys
	CreateAPIKey(ctx context.Context, k user.APIKey) (*user.APIKey, error)
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*user.APIKey, error)
	ListAPIKeys(ctx context.Context, userID string) ([]user.APIKey, error)
	DeleteAPIKey(ctx context.Context, id, userID string) error
	TouchAPIKey(ctx context.Context, id string) error

	// Clients
	ListClients(ctx context.Context) ([]client.Client, error)
	GetClient(ctx context.Context, id string) (*client.Client, error)
	CreateClient(ctx context.Context, req client.CreateRequest) (*client.Client, error)
	UpdateClient(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error)
	DeleteClient(ctx context.Context, id string) error

	// Matters
	ListMatters(ctx context.Context, clientID string) ([]matter.Matter, error)
	GetMatter(ctx context.Context, id string) (*matter.Matter, error)
	CreateMatter(ctx context.Context, req matter.CreateRequest) (*matter.Matter, error)
	UpdateMatter(ctx context.Context, id string, req matter.UpdateRequest) (*matter.Matter, error)
	DeleteMatter(ctx context.Context, id string) error

	// Contracts
	ListContracts(ctx context.Context, matterID string) ([]contract.Contract, error)
	GetContract(ctx context.Context, id string) (*contract.Contract, error)
	CreateContract(ctx context.Context, req contract.CreateRequest) (*contract.Contract, error)
	UpdateContract(ctx context.Context, id string, req contract.UpdateRequest) (*contract.Contract, error)
	DeleteContract(ctx context.Context, id string) error

	// Disputes
	ListDisputes(ctx context.Context, matterID string) ([]dispute.Dispute, error)
	GetDispute(ctx context.Context, id string) (*dispute.Dispute, error)
	CreateDispute(ctx context.Context, req dispute.CreateRequest) (*dispute.Dispute, error)
	UpdateDispute(ctx context.Context, id string, req dispute.UpdateRequest) (*dispute.Dispute, error)
	DeleteDispute(ctx context.Context, id string) error

	// Documents
	ListDocuments(ctx context.Context, matterID string) ([]document.Document, error)
	GetDocument(ctx context.Context, id string) (*document.Document, error)
	CreateDocument(ctx context.Context, req document.CreateRequest, uploadedBy string) (*document.Document, error)
	UpdateDocument(ctx context.Context, id string, req document.UpdateRequest) (*document.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// Analyses
	ListAnalyses(ctx context.Context, contractID string) ([]analysis.Analysis, error)
	GetAnalysis(ctx context.Context, id string) (*analysis.Analysis, error)
	CreateAnalysis(ctx context.Context, a analysis.Analysis) (*analysis.Analysis, error)
	UpdateAnalysis(ctx context.Context, a analysis.Analysis) error

	// Drafts
	ListDrafts(ctx context.Context, matterID string) ([]analysis.Draft, error)
	GetDraft(ctx context.Context, id string) (*analysis.Draft, error)
	CreateDraft(ctx context.Context, d analysis.Draft) (*analysis.Draft, error)
	UpdateDraft(ctx context.Context, d analysis.Draft) error
}
