package service

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/domain/client"
	"github.com/praxis-legal/praxis/internal/domain/contract"
	"github.com/praxis-legal/praxis/internal/domain/dispute"
	"github.com/praxis-legal/praxis/internal/domain/document"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/domain/tenant"
	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is an in-memory implementation of database.Store for testing.
type mockStore struct {
	tenants       []tenant.Tenant
	users         []user.User
	refreshTokens []user.RefreshToken
	revoked       map[string]time.Time
	apiKeys       []user.APIKey
	clients       []client.Client
	matters       []matter.Matter
	contracts     []contract.Contract
	disputes      []dispute.Dispute
	documents     []document.Document
	analyses      []analysis.Analysis
	drafts        []analysis.Draft
	seq           int

	// Error hooks. Set these to inject failures.
	getUserErr        error
	createUserErr     error
	isRevokedErr      error
	createAnalysisErr error
	updateAnalysisErr error
}

func (m *mockStore) nextID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
}

// --- Tenants ---

func (m *mockStore) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	return m.tenants, nil
}

func (m *mockStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			return &m.tenants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTenant(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	t := tenant.Tenant{ID: m.nextID(), Name: req.Name, Plan: req.Plan, Enabled: true}
	m.tenants = append(m.tenants, t)
	return &t, nil
}

func (m *mockStore) UpdateTenant(_ context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			if req.Name != "" {
				m.tenants[i].Name = req.Name
			}
			if req.Plan != "" {
				m.tenants[i].Plan = req.Plan
			}
			if req.Enabled != nil {
				m.tenants[i].Enabled = *req.Enabled
			}
			return &m.tenants[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// --- Users ---

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	return m.users, nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	if m.getUserErr != nil {
		return nil, m.getUserErr
	}
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateUser(_ context.Context, u user.User) (*user.User, error) {
	if m.createUserErr != nil {
		return nil, m.createUserErr
	}
	u.ID = m.nextID()
	u.CreatedAt = time.Now()
	m.users = append(m.users, u)
	return &u, nil
}

func (m *mockStore) UpdateUser(_ context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			if req.Name != "" {
				m.users[i].Name = req.Name
			}
			if req.Role != "" {
				m.users[i].Role = req.Role
			}
			if req.BarNumber != "" {
				m.users[i].BarNumber = req.BarNumber
			}
			if req.Enabled != nil {
				m.users[i].Enabled = *req.Enabled
			}
			return &m.users[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) UpdateUserPassword(_ context.Context, id, passwordHash string, mustChange bool) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = passwordHash
			m.users[i].MustChangePassword = mustChange
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteUser(_ context.Context, id string) error {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) CountUsers(_ context.Context) (int, error) {
	return len(m.users), nil
}

// --- Refresh tokens ---

func (m *mockStore) CreateRefreshToken(_ context.Context, t user.RefreshToken) error {
	m.refreshTokens = append(m.refreshTokens, t)
	return nil
}

func (m *mockStore) GetRefreshToken(_ context.Context, tokenHash string) (*user.RefreshToken, error) {
	for i := range m.refreshTokens {
		if m.refreshTokens[i].TokenHash == tokenHash {
			return &m.refreshTokens[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) RotateRefreshToken(ctx context.Context, oldHash string, replacement user.RefreshToken) error {
	if err := m.DeleteRefreshToken(ctx, oldHash); err != nil {
		return err
	}
	return m.CreateRefreshToken(ctx, replacement)
}

func (m *mockStore) DeleteRefreshToken(_ context.Context, tokenHash string) error {
	for i := range m.refreshTokens {
		if m.refreshTokens[i].TokenHash == tokenHash {
			m.refreshTokens = append(m.refreshTokens[:i], m.refreshTokens[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	kept := m.refreshTokens[:0]
	for _, t := range m.refreshTokens {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	m.refreshTokens = kept
	return nil
}

// --- Token revocation ---

func (m *mockStore) RevokeToken(_ context.Context, jti string, expiresAt time.Time) error {
	if m.revoked == nil {
		m.revoked = make(map[string]time.Time)
	}
	m.revoked[jti] = expiresAt
	return nil
}

func (m *mockStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	if m.isRevokedErr != nil {
		return false, m.isRevokedErr
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

func (m *mockStore) PurgeExpiredRevocations(_ context.Context) (int64, error) {
	var n int64
	for jti, exp := range m.revoked {
		if time.Now().After(exp) {
			delete(m.revoked, jti)
			n++
		}
	}
	return n, nil
}

// --- API keys ---

func (m *mockStore) CreateAPIKey(_ context.Context, k user.APIKey) (*user.APIKey, error) {
	k.ID = m.nextID()
	k.CreatedAt = time.Now()
	m.apiKeys = append(m.apiKeys, k)
	return &k, nil
}

func (m *mockStore) GetAPIKeyByHash(_ context.Context, keyHash string) (*user.APIKey, error) {
	for i := range m.apiKeys {
		if m.apiKeys[i].KeyHash == keyHash {
			return &m.apiKeys[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListAPIKeys(_ context.Context, userID string) ([]user.APIKey, error) {
	var keys []user.APIKey
	for _, k := range m.apiKeys {
		if k.UserID == userID {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) DeleteAPIKey(_ context.Context, id, userID string) error {
	for i := range m.apiKeys {
		if m.apiKeys[i].ID == id && m.apiKeys[i].UserID == userID {
			m.apiKeys = append(m.apiKeys[:i], m.apiKeys[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) TouchAPIKey(_ context.Context, id string) error {
	for i := range m.apiKeys {
		if m.apiKeys[i].ID == id {
			now := time.Now()
			m.apiKeys[i].LastUsedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Clients ---

func (m *mockStore) ListClients(_ context.Context) ([]client.Client, error) {
	return m.clients, nil
}

func (m *mockStore) GetClient(_ context.Context, id string) (*client.Client, error) {
	for i := range m.clients {
		if m.clients[i].ID == id {
			return &m.clients[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateClient(_ context.Context, req client.CreateRequest) (*client.Client, error) {
	c := client.Client{
		ID: m.nextID(), Name: req.Name, Kind: req.Kind, Email: req.Email,
		Phone: req.Phone, Address: req.Address, TaxID: req.TaxID,
		ContactName: req.ContactName, Notes: req.Notes, Version: 1,
	}
	m.clients = append(m.clients, c)
	return &c, nil
}

func (m *mockStore) UpdateClient(_ context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	for i := range m.clients {
		if m.clients[i].ID == id {
			if m.clients[i].Version != req.Version {
				return nil, domain.ErrConflict
			}
			if req.Name != "" {
				m.clients[i].Name = req.Name
			}
			if req.Archived != nil {
				m.clients[i].Archived = *req.Archived
			}
			m.clients[i].Version++
			return &m.clients[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteClient(_ context.Context, id string) error {
	for i := range m.clients {
		if m.clients[i].ID == id {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Matters ---

func (m *mockStore) ListMatters(_ context.Context, clientID string) ([]matter.Matter, error) {
	if clientID == "" {
		return m.matters, nil
	}
	var out []matter.Matter
	for _, mt := range m.matters {
		if mt.ClientID == clientID {
			out = append(out, mt)
		}
	}
	return out, nil
}

func (m *mockStore) GetMatter(_ context.Context, id string) (*matter.Matter, error) {
	for i := range m.matters {
		if m.matters[i].ID == id {
			return &m.matters[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateMatter(_ context.Context, req matter.CreateRequest) (*matter.Matter, error) {
	mt := matter.Matter{
		ID: m.nextID(), ClientID: req.ClientID, Title: req.Title,
		Description: req.Description, PracticeArea: req.PracticeArea,
		Status: matter.StatusOpen, LeadUserID: req.LeadUserID,
		OpenedAt: time.Now(), Version: 1,
	}
	m.matters = append(m.matters, mt)
	return &mt, nil
}

func (m *mockStore) UpdateMatter(_ context.Context, id string, req matter.UpdateRequest) (*matter.Matter, error) {
	for i := range m.matters {
		if m.matters[i].ID == id {
			if m.matters[i].Version != req.Version {
				return nil, domain.ErrConflict
			}
			if req.Status != "" {
				if !matter.CanTransition(m.matters[i].Status, req.Status) {
					return nil, domain.ErrValidation
				}
				m.matters[i].Status = req.Status
			}
			if req.Title != "" {
				m.matters[i].Title = req.Title
			}
			m.matters[i].Version++
			return &m.matters[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteMatter(_ context.Context, id string) error {
	for i := range m.matters {
		if m.matters[i].ID == id {
			m.matters = append(m.matters[:i], m.matters[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Contracts ---

func (m *mockStore) ListContracts(_ context.Context, matterID string) ([]contract.Contract, error) {
	if matterID == "" {
		return m.contracts, nil
	}
	var out []contract.Contract
	for _, c := range m.contracts {
		if c.MatterID == matterID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) GetContract(_ context.Context, id string) (*contract.Contract, error) {
	for i := range m.contracts {
		if m.contracts[i].ID == id {
			return &m.contracts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateContract(_ context.Context, req contract.CreateRequest) (*contract.Contract, error) {
	c := contract.Contract{
		ID: m.nextID(), MatterID: req.MatterID, Title: req.Title,
		Counterparty: req.Counterparty, Status: contract.StatusDraft,
		Body: req.Body, ValueCents: req.ValueCents, Currency: req.Currency,
		Version: 1,
	}
	m.contracts = append(m.contracts, c)
	return &c, nil
}

func (m *mockStore) UpdateContract(_ context.Context, id string, req contract.UpdateRequest) (*contract.Contract, error) {
	for i := range m.contracts {
		if m.contracts[i].ID == id {
			if m.contracts[i].Version != req.Version {
				return nil, domain.ErrConflict
			}
			if req.Status != "" {
				if !contract.CanTransition(m.contracts[i].Status, req.Status) {
					return nil, domain.ErrValidation
				}
				m.contracts[i].Status = req.Status
			}
			if req.Body != "" {
				m.contracts[i].Body = req.Body
			}
			m.contracts[i].Version++
			return &m.contracts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteContract(_ context.Context, id string) error {
	for i := range m.contracts {
		if m.contracts[i].ID == id {
			m.contracts = append(m.contracts[:i], m.contracts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Disputes ---

func (m *mockStore) ListDisputes(_ context.Context, matterID string) ([]dispute.Dispute, error) {
	if matterID == "" {
		return m.disputes, nil
	}
	var out []dispute.Dispute
	for _, d := range m.disputes {
		if d.MatterID == matterID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) GetDispute(_ context.Context, id string) (*dispute.Dispute, error) {
	for i := range m.disputes {
		if m.disputes[i].ID == id {
			return &m.disputes[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateDispute(_ context.Context, req dispute.CreateRequest) (*dispute.Dispute, error) {
	d := dispute.Dispute{
		ID: m.nextID(), MatterID: req.MatterID, Title: req.Title,
		OpposingParty: req.OpposingParty, Forum: req.Forum,
		CaseNumber: req.CaseNumber, Status: dispute.StatusFiled, Version: 1,
	}
	m.disputes = append(m.disputes, d)
	return &d, nil
}

func (m *mockStore) UpdateDispute(_ context.Context, id string, req dispute.UpdateRequest) (*dispute.Dispute, error) {
	for i := range m.disputes {
		if m.disputes[i].ID == id {
			if m.disputes[i].Version != req.Version {
				return nil, domain.ErrConflict
			}
			if req.Status != "" {
				m.disputes[i].Status = req.Status
			}
			m.disputes[i].Version++
			return &m.disputes[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteDispute(_ context.Context, id string) error {
	for i := range m.disputes {
		if m.disputes[i].ID == id {
			m.disputes = append(m.disputes[:i], m.disputes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Documents ---

func (m *mockStore) ListDocuments(_ context.Context, matterID string) ([]document.Document, error) {
	if matterID == "" {
		return m.documents, nil
	}
	var out []document.Document
	for _, d := range m.documents {
		if d.MatterID == matterID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) GetDocument(_ context.Context, id string) (*document.Document, error) {
	for i := range m.documents {
		if m.documents[i].ID == id {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateDocument(_ context.Context, req document.CreateRequest, uploadedBy string) (*document.Document, error) {
	d := document.Document{
		ID: m.nextID(), MatterID: req.MatterID, Name: req.Name,
		MimeType: req.MimeType, SizeBytes: req.SizeBytes, Checksum: req.Checksum,
		Text: req.Text, Processing: document.ProcessingPending,
		UploadedBy: uploadedBy, Version: 1,
	}
	m.documents = append(m.documents, d)
	return &d, nil
}

func (m *mockStore) UpdateDocument(_ context.Context, id string, req document.UpdateRequest) (*document.Document, error) {
	for i := range m.documents {
		if m.documents[i].ID == id {
			if m.documents[i].Version != req.Version {
				return nil, domain.ErrConflict
			}
			if req.Name != "" {
				m.documents[i].Name = req.Name
			}
			if req.Text != "" {
				m.documents[i].Text = req.Text
			}
			if req.Processing != "" {
				m.documents[i].Processing = req.Processing
			}
			m.documents[i].Version++
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteDocument(_ context.Context, id string) error {
	for i := range m.documents {
		if m.documents[i].ID == id {
			m.documents = append(m.documents[:i], m.documents[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Analyses ---

func (m *mockStore) ListAnalyses(_ context.Context, contractID string) ([]analysis.Analysis, error) {
	var out []analysis.Analysis
	for _, a := range m.analyses {
		if a.ContractID == contractID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) GetAnalysis(_ context.Context, id string) (*analysis.Analysis, error) {
	for i := range m.analyses {
		if m.analyses[i].ID == id {
			return &m.analyses[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateAnalysis(_ context.Context, a analysis.Analysis) (*analysis.Analysis, error) {
	if m.createAnalysisErr != nil {
		return nil, m.createAnalysisErr
	}
	a.CreatedAt = time.Now()
	m.analyses = append(m.analyses, a)
	return &a, nil
}

func (m *mockStore) UpdateAnalysis(_ context.Context, a analysis.Analysis) error {
	if m.updateAnalysisErr != nil {
		return m.updateAnalysisErr
	}
	for i := range m.analyses {
		if m.analyses[i].ID == a.ID {
			m.analyses[i] = a
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Drafts ---

func (m *mockStore) ListDrafts(_ context.Context, matterID string) ([]analysis.Draft, error) {
	var out []analysis.Draft
	for _, d := range m.drafts {
		if d.MatterID == matterID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) GetDraft(_ context.Context, id string) (*analysis.Draft, error) {
	for i := range m.drafts {
		if m.drafts[i].ID == id {
			return &m.drafts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateDraft(_ context.Context, d analysis.Draft) (*analysis.Draft, error) {
	d.CreatedAt = time.Now()
	m.drafts = append(m.drafts, d)
	return &d, nil
}

func (m *mockStore) UpdateDraft(_ context.Context, d analysis.Draft) error {
	for i := range m.drafts {
		if m.drafts[i].ID == d.ID {
			m.drafts[i] = d
			return nil
		}
	}
	return domain.ErrNotFound
}
